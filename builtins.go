package maskgen

// builtinSymbols is the literal body of `?s` (spec.md §4.3), the ASCII
// punctuation/symbol class. Listed as codepoints rather than parsed
// through parseCharsetBody's `?`-escaping since this is Go source, not
// user-supplied text.
var builtinSymbols = []int32(" !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~")

func rangeCodepoints(lo, hi rune) []int32 {
	out := make([]int32, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		out = append(out, int32(r))
	}
	return out
}

func literalTokens(cps []int32) []charsetToken {
	out := make([]charsetToken, len(cps))
	for i, cp := range cps {
		out[i] = charsetToken{cp: cp}
	}
	return out
}

// RegisterBuiltins binds the names documented in spec.md §4.3 ('l', 'u',
// 'd', 's', 'h', 'H', 'n', 'r', 'a', and 'b' in byte mode only) into r.
func RegisterBuiltins(r *Registry, unicode bool) error {
	defs := []struct {
		name int32
		cps  []int32
	}{
		{'l', rangeCodepoints('a', 'z')},
		{'u', rangeCodepoints('A', 'Z')},
		{'d', rangeCodepoints('0', '9')},
		{'s', builtinSymbols},
		{'h', append(rangeCodepoints('0', '9'), rangeCodepoints('a', 'f')...)},
		{'H', append(rangeCodepoints('0', '9'), rangeCodepoints('A', 'F')...)},
		{'n', []int32{'\n'}},
		{'r', []int32{'\r'}},
	}
	for _, d := range defs {
		if err := r.Define(d.name, literalTokens(d.cps)); err != nil {
			return err
		}
	}

	// ?a = ?l?u?d?s, requires expansion.
	if err := r.Define('a', []charsetToken{
		{isRef: true, ref: 'l'},
		{isRef: true, ref: 'u'},
		{isRef: true, ref: 'd'},
		{isRef: true, ref: 's'},
	}); err != nil {
		return err
	}

	if !unicode {
		if err := r.Define('b', literalTokens(rangeCodepoints(0, 0xFF))); err != nil {
			return err
		}
	}
	return nil
}
