package maskgen

import "math/bits"

// Mask is an ordered sequence of Charsets whose Cartesian product is the
// set of words it enumerates, per spec.md §3/§4.4. A Mask owns one Cursor
// per position; two Masks built over the same logical Charset hold
// independent cursors.
type Mask struct {
	charsets []*Charset
	cursors  []*Cursor
	length   uint64 // product of charset lengths, overflow-checked
}

// NewMask builds an empty Mask (width 0, length 1 — the empty product).
func NewMask() *Mask {
	return &Mask{length: 1}
}

// mulOverflow multiplies a and b, reporting whether the 64-bit product
// overflowed. Uses math/bits.Mul64 the same way the teacher's vm_charset.go
// prefers shifts over div/mod: a single hardware-backed widening multiply
// instead of a manual overflow precheck.
func mulOverflow(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi != 0
}

// AppendRight appends cs as the new rightmost (fastest-varying) position.
// Used by the mask-line parser (C5), which parses tokens left to right.
func (m *Mask) AppendRight(cs *Charset) error {
	return m.append(cs, len(m.charsets))
}

// AppendLeft appends cs as the new leftmost position. Used by the
// bruteforce generator (C7), which builds masks by prepending constraint
// draws as it walks a distribution.
func (m *Mask) AppendLeft(cs *Charset) error {
	return m.append(cs, 0)
}

func (m *Mask) append(cs *Charset, at int) error {
	newLen, overflow := mulOverflow(m.length, uint64(cs.Len()))
	if overflow {
		return newErr(ErrOverflow, "mask word count exceeds 64 bits")
	}
	m.length = newLen

	cur := NewCursor(cs)
	m.charsets = append(m.charsets, nil)
	m.cursors = append(m.cursors, nil)
	copy(m.charsets[at+1:], m.charsets[at:])
	copy(m.cursors[at+1:], m.cursors[at:])
	m.charsets[at] = cs
	m.cursors[at] = cur
	return nil
}

// Width is the number of positions in the mask.
func (m *Mask) Width() int { return len(m.charsets) }

// Len is the number of distinct words the mask enumerates.
func (m *Mask) Len() uint64 { return m.length }

// SetPosition sets the mask to index o (0 <= o < Len()) via the
// right-to-left odometer of spec.md §4.4.
func (m *Mask) SetPosition(o uint64) {
	for i := len(m.cursors) - 1; i >= 0; i-- {
		n := uint64(m.cursors[i].Len())
		m.cursors[i].SetPosition(int(o % n))
		o /= n
	}
}

// Current fills buf[0:Width()] with each position's current codepoint.
func (m *Mask) Current(buf []int32) {
	for i, c := range m.cursors {
		buf[i] = c.Current()
	}
}

// Advance moves the mask to its next index, writing only the positions
// whose wheel actually ticked, and reports whether the mask rolled back
// to index 0 (carry out of the leftmost position), per spec.md §4.4's
// "only memory writes ... are positions whose odometer wheel actually
// ticked" guarantee.
func (m *Mask) Advance(buf []int32) bool {
	carry := true
	for i := len(m.cursors) - 1; i >= 0 && carry; i-- {
		var cp int32
		cp, carry = m.cursors[i].Advance()
		buf[i] = cp
	}
	return carry
}
