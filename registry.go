package maskgen

// charsetToken is one element of a parsed charset/mask body: either a
// literal codepoint or a `?name` reference to another named charset, per
// spec.md §4.3's reference syntax.
type charsetToken struct {
	isRef bool
	cp    int32 // valid when !isRef
	ref   int32 // valid when isRef
}

// parseCharsetBody decodes text under the codec, turning `?X` into a
// reference token, `??` into a literal `?`, and an unescaped trailing `?`
// at end of input into a literal `?` (spec.md §4.3). Every other
// codepoint becomes a literal token.
func parseCharsetBody(codec Codec, text []byte) ([]charsetToken, error) {
	var tokens []charsetToken
	for len(text) > 0 {
		cp, n, status := codec.DecodeOne(text)
		if status != StatusOK {
			return nil, newErr(ErrDecode, "invalid encoding in charset body")
		}
		text = text[n:]

		if cp != '?' {
			tokens = append(tokens, charsetToken{cp: cp})
			continue
		}

		if len(text) == 0 {
			// trailing unescaped `?`: literal `?`
			tokens = append(tokens, charsetToken{cp: '?'})
			break
		}

		cp2, n2, status2 := codec.DecodeOne(text)
		if status2 != StatusOK {
			return nil, newErr(ErrDecode, "invalid encoding in charset body")
		}
		text = text[n2:]

		if cp2 == '?' {
			tokens = append(tokens, charsetToken{cp: '?'})
			continue
		}
		tokens = append(tokens, charsetToken{isRef: true, ref: cp2})
	}
	return tokens, nil
}

// regEntry is one definition bound to a name, per spec.md §3's "Named
// charset" tuple. raw is nil once the entry is final, at which point body
// holds the fully expanded, deduplicated codepoint sequence.
type regEntry struct {
	raw   []charsetToken
	final bool
	body  []int32
}

// Registry is the multi-map of name -> ordered definitions described in
// spec.md §3/§4.3: the visible definition is the most recent, but earlier
// definitions remain reachable while expanding a self-referential one.
type Registry struct {
	defs map[int32][]*regEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[int32][]*regEntry)}
}

// Clone returns a registry whose definitions can be extended (e.g. with
// per-mask-line ephemeral charsets, spec.md §4.5) without mutating r:
// existing *regEntry values are shared, but each name's definition list
// gets its own backing slice so appends never alias r's.
func (r *Registry) Clone() *Registry {
	nr := NewRegistry()
	for name, entries := range r.defs {
		cp := make([]*regEntry, len(entries))
		copy(cp, entries)
		nr.defs[name] = cp
	}
	return nr
}

// DefineCharsetFromText parses text under codec (honoring `?`-references
// per spec.md §4.3) and binds the result to name in reg. This is the
// entry point CLI-level charset bindings (`-1`..`-4`, `-c K:VAL`) use to
// feed user-supplied charset text into the registry.
func DefineCharsetFromText(reg *Registry, codec Codec, name int32, text []byte) error {
	tokens, err := parseCharsetBody(codec, text)
	if err != nil {
		return err
	}
	return reg.Define(name, tokens)
}

// Define binds name to a new definition built from tokens, appended after
// any existing definitions of the same name. A definition with no
// references is immediately final.
func (r *Registry) Define(name int32, tokens []charsetToken) error {
	entry := &regEntry{raw: tokens}
	if !hasRef(tokens) {
		body, err := flattenLiterals(tokens)
		if err != nil {
			return err
		}
		entry.final = true
		entry.raw = nil
		entry.body = dedupPreserveOrder(body)
	}
	r.defs[name] = append(r.defs[name], entry)
	return nil
}

// Defined reports whether name has at least one definition.
func (r *Registry) Defined(name int32) bool {
	return len(r.defs[name]) > 0
}

func hasRef(tokens []charsetToken) bool {
	for _, t := range tokens {
		if t.isRef {
			return true
		}
	}
	return false
}

func flattenLiterals(tokens []charsetToken) ([]int32, error) {
	out := make([]int32, 0, len(tokens))
	for _, t := range tokens {
		if t.isRef {
			return nil, newErr(ErrParse, "unexpected reference in literal-only body")
		}
		out = append(out, t.cp)
	}
	return out, nil
}

func dedupPreserveOrder(cps []int32) []int32 {
	seen := make(map[int32]struct{}, len(cps))
	out := make([]int32, 0, len(cps))
	for _, cp := range cps {
		if _, ok := seen[cp]; ok {
			continue
		}
		seen[cp] = struct{}{}
		out = append(out, cp)
	}
	return out
}

// Expand resolves name to a Charset, performing the cycle-safe expansion
// of spec.md §4.3. It is idempotent: once a name's most recent definition
// is final, repeated calls return the same cached body (invariant 6 of
// spec.md §8).
func (r *Registry) Expand(name int32) (*Charset, error) {
	defs := r.defs[name]
	if len(defs) == 0 {
		return nil, newErr(ErrParse, "undefined charset reference `?%c`", name)
	}
	last := defs[len(defs)-1]
	if !last.final {
		body, err := r.expandBody(last.raw, []int32{name})
		if err != nil {
			return nil, err
		}
		last.body = dedupPreserveOrder(body)
		last.final = true
		last.raw = nil
	}
	return NewCharset(last.body)
}

// expandBody walks tokens left to right, substituting reference tokens
// according to the history of names already substituted on the path to
// this sub-range, per spec.md §4.3 step 2-3.
func (r *Registry) expandBody(tokens []charsetToken, history []int32) ([]int32, error) {
	out := make([]int32, 0, len(tokens))
	for _, t := range tokens {
		if !t.isRef {
			out = append(out, t.cp)
			continue
		}

		defs := r.defs[t.ref]
		if len(defs) == 0 {
			return nil, newErr(ErrParse, "undefined charset reference `?%c`", t.ref)
		}

		c := countOccurrences(history, t.ref)
		d := len(defs)
		if c >= d {
			return nil, newErr(ErrParse, "charset `?%c` exceeds available prior definitions during expansion", t.ref)
		}

		// c-th-from-last: c=0 is the most recent definition, c=1 the
		// one before it, and so on.
		chosen := defs[d-1-c]
		if chosen.final {
			out = append(out, chosen.body...)
			continue
		}

		sub, err := r.expandBody(chosen.raw, append(append([]int32{}, history...), t.ref))
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func countOccurrences(history []int32, name int32) int {
	n := 0
	for _, h := range history {
		if h == name {
			n++
		}
	}
	return n
}
