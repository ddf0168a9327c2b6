package maskgen

import (
	"bytes"
	"os"
	"strconv"
)

// bfConstraint is one `MIN MAX CHARSET` rule of a bruteforce file, per
// spec.md §4.7.
type bfConstraint struct {
	cs       *Charset
	min, max int
}

// anonymousName assigns each bruteforce constraint a registry key
// disjoint from any real user-visible name. Real names are always
// non-negative codepoints; negative keys can never collide with one,
// which plays the role spec.md §4.7 describes for a NUL sentinel.
func anonymousName(k int) int32 { return int32(-1 - k) }

// BruteforceGenerator enumerates every Mask satisfying a set of
// occurrence constraints, per spec.md §4.7. It implements MaskGenerator.
type BruteforceGenerator struct {
	width       int
	constraints []bfConstraint

	// distributions holds every valid occurrence-count vector,
	// precomputed once at construction in the order described by
	// spec.md §4.7 stage 1. Unlike stage 2 (permutations, the
	// combinatorially explosive part, which genuinely must stay
	// lazy), the distribution count is bounded by the product of
	// each constraint's range width and is cheap to materialize.
	distributions [][]int
	distIdx       int

	// digits is the current stage-2 permutation: digits[i] is the
	// constraint index occupying mask position i. nil means the
	// current distribution hasn't been started yet.
	digits []int
}

// NewBruteforceGenerator builds a generator for width positions under
// constraints. Each constraint's max is expected to already be clamped to
// width (spec.md §9's resolved Open Question).
func NewBruteforceGenerator(width int, constraints []bfConstraint) (*BruteforceGenerator, error) {
	if width <= 0 {
		return nil, newErr(ErrParse, "bruteforce width must be positive")
	}
	if len(constraints) == 0 {
		return nil, newErr(ErrParse, "at least one bruteforce constraint is required")
	}
	return &BruteforceGenerator{
		width:         width,
		constraints:   constraints,
		distributions: enumerateDistributions(constraints, width),
	}, nil
}

// Next implements MaskGenerator.
func (g *BruteforceGenerator) Next() (*Mask, bool) {
	for g.distIdx < len(g.distributions) {
		if g.digits == nil {
			g.digits = ascendingDigits(g.distributions[g.distIdx], g.width)
			return g.buildMask()
		}
		if nextPermutation(g.digits) {
			return g.buildMask()
		}
		g.distIdx++
		g.digits = nil
	}
	return nil, false
}

// buildMask assembles the Mask for the current digit arrangement by
// prepending each position's charset right to left, so the final
// left-to-right order matches g.digits without needing an index offset.
func (g *BruteforceGenerator) buildMask() (*Mask, bool) {
	m := NewMask()
	for i := len(g.digits) - 1; i >= 0; i-- {
		if err := m.AppendLeft(g.constraints[g.digits[i]].cs); err != nil {
			return nil, false
		}
	}
	return m, true
}

// Reset implements MaskGenerator.
func (g *BruteforceGenerator) Reset() {
	g.distIdx = 0
	g.digits = nil
}

// Good implements MaskGenerator. The bruteforce generator never fails
// after a successful construction: stepping through precomputed
// distributions and multiset permutations is pure arithmetic.
func (g *BruteforceGenerator) Good() bool { return true }

// Err implements MaskGenerator.
func (g *BruteforceGenerator) Err() error { return nil }

// enumerateDistributions returns every n = (n_0..n_{K-1}) with
// min_k <= n_k <= max_k and sum(n) == width, in the order of spec.md
// §4.7 stage 1: an odometer with n_0 as the fastest wheel. The recursion
// fixes n_{K-1}..n_1 via nested loops with n_{K-1} outermost (slowest)
// and n_1 innermost, then computes n_0 directly as the remainder needed
// to hit width exactly. That direct computation is the "fast-skip to
// close the gap" on the leftmost wheel: instead of looping every
// candidate for n_0 and rejecting all but one, the single valid
// candidate (if any) is derived in O(1).
func enumerateDistributions(constraints []bfConstraint, width int) [][]int {
	k := len(constraints)
	var out [][]int
	n := make([]int, k)

	var rec func(idx, remaining int)
	rec = func(idx, remaining int) {
		if idx == 0 {
			first := remaining
			if first < constraints[0].min || first > constraints[0].max {
				return
			}
			cp := make([]int, k)
			copy(cp, n)
			cp[0] = first
			out = append(out, cp)
			return
		}
		c := constraints[idx]
		for v := c.min; v <= c.max && v <= remaining; v++ {
			n[idx] = v
			rec(idx-1, remaining-v)
		}
	}
	rec(k-1, width)
	return out
}

// ascendingDigits lays out the lexicographically smallest arrangement of
// the multiset described by n over width positions: n[0] copies of
// constraint 0, then n[1] copies of constraint 1, and so on. This is the
// DFS leftmost-smaller-k-first starting point of spec.md §4.7 stage 2.
func ascendingDigits(n []int, width int) []int {
	digits := make([]int, 0, width)
	for k, count := range n {
		for i := 0; i < count; i++ {
			digits = append(digits, k)
		}
	}
	return digits
}

// nextPermutation advances digits to the next lexicographically greater
// arrangement of the same multiset, reporting false once digits is
// already the last (fully descending) arrangement. This is the standard
// next-permutation algorithm, which handles repeated elements correctly,
// used here in place of a recursive coroutine per spec.md §9's design
// note preferring explicit state over Duff's-device-style generators.
func nextPermutation(digits []int) bool {
	n := len(digits)
	i := n - 2
	for i >= 0 && digits[i] >= digits[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := n - 1
	for digits[j] <= digits[i] {
		j--
	}
	digits[i], digits[j] = digits[j], digits[i]
	for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}
	return true
}

// ParseBruteforceFile parses a bruteforce rule file (spec.md §4.7): a
// positive width on the first non-empty line, followed by `MIN MAX
// CHARSET` constraint lines. Lines are LF- or CRLF-terminated; there are
// no comments and no escapes. base supplies the charsets (builtins plus
// any CLI-bound custom charsets) a constraint's CHARSET field may
// reference via `?name`.
func ParseBruteforceFile(codec Codec, base *Registry, path string) (*BruteforceGenerator, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr(ErrIO, "cannot read bruteforce file %q: %v", path, err)
	}

	reg := base.Clone()
	lines := bytes.Split(content, []byte("\n"))
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}

	var (
		width       int
		widthSet    bool
		constraints []bfConstraint
		constrIdx   int
	)

	for i, raw := range lines {
		lineNo := i + 1
		line := bytes.TrimSuffix(raw, []byte("\r"))
		if len(line) == 0 {
			continue
		}

		if !widthSet {
			w, perr := strconv.ParseUint(string(line), 10, 64)
			if perr != nil || w == 0 {
				return nil, attachLocation(newErr(ErrParse, "expected a positive width integer"), path, lineNo)
			}
			width = int(w)
			widthSet = true
			continue
		}

		minVal, maxVal, csText, perr := parseBruteRuleLine(line)
		if perr != nil {
			return nil, attachLocation(perr, path, lineNo)
		}
		if maxVal > uint64(width) {
			maxVal = uint64(width)
		}

		tokens, terr := parseCharsetBody(codec, csText)
		if terr != nil {
			return nil, attachLocation(terr, path, lineNo)
		}
		name := anonymousName(constrIdx)
		if derr := reg.Define(name, tokens); derr != nil {
			return nil, attachLocation(derr, path, lineNo)
		}
		cs, eerr := reg.Expand(name)
		if eerr != nil {
			return nil, attachLocation(eerr, path, lineNo)
		}
		constraints = append(constraints, bfConstraint{cs: cs, min: int(minVal), max: int(maxVal)})
		constrIdx++
	}

	if !widthSet {
		return nil, attachLocation(newErr(ErrParse, "bruteforce file has no width line"), path, 0)
	}
	if len(constraints) == 0 {
		return nil, attachLocation(newErr(ErrParse, "bruteforce file defines no constraints"), path, 0)
	}
	return NewBruteforceGenerator(width, constraints)
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isBlankByte(b byte) bool { return b == ' ' || b == '\t' }

// parseBruteRuleLine splits a `MIN MAX CHARSET` line. CHARSET is
// everything after the blank run following MAX, preserved byte for byte
// (it may itself contain blanks, e.g. the builtin `?s` symbol class).
func parseBruteRuleLine(line []byte) (min, max uint64, charset []byte, err error) {
	i := 0
	start := i
	for i < len(line) && isDigitByte(line[i]) {
		i++
	}
	if i == start {
		return 0, 0, nil, newErr(ErrParse, "expected MIN integer")
	}
	min, _ = strconv.ParseUint(string(line[start:i]), 10, 64)

	blankStart := i
	for i < len(line) && isBlankByte(line[i]) {
		i++
	}
	if i == blankStart {
		return 0, 0, nil, newErr(ErrParse, "expected blank after MIN")
	}

	start = i
	for i < len(line) && isDigitByte(line[i]) {
		i++
	}
	if i == start {
		return 0, 0, nil, newErr(ErrParse, "expected MAX integer")
	}
	max, _ = strconv.ParseUint(string(line[start:i]), 10, 64)

	blankStart = i
	for i < len(line) && isBlankByte(line[i]) {
		i++
	}
	if i == blankStart {
		return 0, 0, nil, newErr(ErrParse, "expected blank after MAX")
	}

	charset = line[i:]
	if len(charset) == 0 {
		return 0, 0, nil, newErr(ErrEmpty, "bruteforce constraint charset must not be empty")
	}
	return min, max, charset, nil
}
