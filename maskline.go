package maskgen

import "bytes"

// maxEphemeralCharsets is the "up to 9 leading tokens" limit of spec.md
// §4.5.
const maxEphemeralCharsets = 9

// ParseMaskLine parses one line of a mask file (spec.md §4.5) into a
// Mask, using base as the starting registry (builtins plus any CLI-bound
// custom charsets). Comment and empty lines return (nil, nil): "no
// mask, continue". Leading ephemeral charset tokens shadow base names
// for the duration of this line only.
func ParseMaskLine(codec Codec, base *Registry, line []byte) (*Mask, error) {
	line = stripTrailingNewline(line)
	if len(line) == 0 {
		return nil, nil
	}
	if line[0] == '#' {
		return nil, nil
	}

	tokens, err := splitLineTokens(line)
	if err != nil {
		return nil, err
	}

	leading := tokens[:len(tokens)-1]
	body := tokens[len(tokens)-1]

	if len(leading) > maxEphemeralCharsets {
		return nil, newErr(ErrParse, "mask line defines %d custom charsets, more than the allowed %d", len(leading), maxEphemeralCharsets)
	}

	reg := base.Clone()
	for i, tok := range leading {
		if len(tok) == 0 {
			return nil, newErr(ErrParse, "custom charset token %d is empty", i+1)
		}
		name := int32('1' + i)
		csTokens, err := parseCharsetBody(codec, tok)
		if err != nil {
			return nil, err
		}
		if err := reg.Define(name, csTokens); err != nil {
			return nil, err
		}
		if _, err := reg.Expand(name); err != nil {
			return nil, err
		}
	}

	return parseMaskBody(codec, reg, body)
}

// ParseInlineMask parses a single mask body with the mask-only grammar:
// no splitting on `,`, no per-line custom charsets (spec.md §4.6, used
// when the command-line argument is not a mask-file path).
func ParseInlineMask(codec Codec, base *Registry, body []byte) (*Mask, error) {
	return parseMaskBody(codec, base, stripTrailingNewline(body))
}

func parseMaskBody(codec Codec, reg *Registry, body []byte) (*Mask, error) {
	m := NewMask()
	for len(body) > 0 {
		cp, n, status := codec.DecodeOne(body)
		if status != StatusOK {
			return nil, newErr(ErrDecode, "invalid encoding in mask body")
		}
		body = body[n:]

		if cp != '?' {
			cs, err := NewCharset([]int32{cp})
			if err != nil {
				return nil, err
			}
			if err := m.AppendRight(cs); err != nil {
				return nil, err
			}
			continue
		}

		if len(body) == 0 {
			cs, err := NewCharset([]int32{'?'})
			if err != nil {
				return nil, err
			}
			if err := m.AppendRight(cs); err != nil {
				return nil, err
			}
			break
		}

		cp2, n2, status2 := codec.DecodeOne(body)
		if status2 != StatusOK {
			return nil, newErr(ErrDecode, "invalid encoding in mask body")
		}
		body = body[n2:]

		if cp2 == '?' {
			cs, err := NewCharset([]int32{'?'})
			if err != nil {
				return nil, err
			}
			if err := m.AppendRight(cs); err != nil {
				return nil, err
			}
			continue
		}

		cs, err := reg.Expand(cp2)
		if err != nil {
			return nil, err
		}
		if err := m.AppendRight(cs); err != nil {
			return nil, err
		}
	}
	if m.Width() == 0 {
		return nil, newErr(ErrEmpty, "mask body must not be empty")
	}
	return m, nil
}

func stripTrailingNewline(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line
}

// splitLineTokens splits line on unescaped `,`, honoring `\,` (literal
// comma) and `\\` (literal backslash) as the only two line-level
// escapes, per spec.md §4.5. Any other backslash is passed through
// literally.
func splitLineTokens(line []byte) ([][]byte, error) {
	var tokens [][]byte
	var cur []byte

	i := 0
	for i < len(line) {
		b := line[i]
		if b == '\\' && i+1 < len(line) && (line[i+1] == ',' || line[i+1] == '\\') {
			cur = append(cur, line[i+1])
			i += 2
			continue
		}
		if b == ',' {
			tokens = append(tokens, cur)
			cur = nil
			i++
			continue
		}
		cur = append(cur, b)
		i++
	}
	tokens = append(tokens, cur)
	return tokens, nil
}
