package maskgen

// Charset is a non-empty, deduplicated, ordered sequence of codepoints
// with a cyclic cursor, per spec.md §3/§4.2. Insertion order of first
// occurrence is preserved; construction deduplicates once and the result
// is immutable from then on, so Charset values may be shared by reference
// while each Mask keeps its own cursor (see mask.go).
type Charset struct {
	codepoints []int32
}

// NewCharset builds a Charset from cps, deduplicating while preserving
// first-occurrence order. Empty input is a fatal construction error, per
// spec.md §4.2.
func NewCharset(cps []int32) (*Charset, error) {
	if len(cps) == 0 {
		return nil, newErr(ErrEmpty, "charset must not be empty")
	}
	seen := make(map[int32]struct{}, len(cps))
	out := make([]int32, 0, len(cps))
	for _, cp := range cps {
		if _, ok := seen[cp]; ok {
			continue
		}
		seen[cp] = struct{}{}
		out = append(out, cp)
	}
	return &Charset{codepoints: out}, nil
}

// Len is the number of distinct codepoints in the set.
func (c *Charset) Len() int { return len(c.codepoints) }

// At returns the codepoint at absolute index i (0 <= i < Len()).
func (c *Charset) At(i int) int32 { return c.codepoints[i] }

// Cursor is the per-Mask-instance cyclic position into a shared Charset
// body, per spec.md's "cursor state is per-mask instance" ownership note.
type Cursor struct {
	cs  *Charset
	pos int
}

// NewCursor builds a Cursor at position 0 over cs.
func NewCursor(cs *Charset) *Cursor {
	return &Cursor{cs: cs, pos: 0}
}

// Len delegates to the underlying Charset.
func (c *Cursor) Len() int { return c.cs.Len() }

// SetPosition sets the cursor to o mod Len(); never fails.
func (c *Cursor) SetPosition(o int) {
	n := c.cs.Len()
	m := o % n
	if m < 0 {
		m += n
	}
	c.pos = m
}

// Current reads the codepoint under the cursor without advancing.
func (c *Cursor) Current() int32 { return c.cs.At(c.pos) }

// Advance moves the cursor by +1 modulo Len, returning the new current
// codepoint and whether the cursor wrapped from len-1 back to 0.
func (c *Cursor) Advance() (int32, bool) {
	c.pos++
	wrapped := c.pos == c.cs.Len()
	if wrapped {
		c.pos = 0
	}
	return c.cs.At(c.pos), wrapped
}
