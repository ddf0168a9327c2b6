package maskgen

import (
	"bytes"
	"os"
)

// MaskGenerator is a restartable lazy sequence of Masks with a sticky
// error flag, per spec.md §3's "MaskGenerator" model. Both the mask-file
// generator (C6) and the bruteforce generator (C7) implement it so the
// range driver (C8) can drive either uniformly.
type MaskGenerator interface {
	// Next returns the next Mask, or ok=false at end of input or on
	// error; check Good() to tell those two apart.
	Next() (mask *Mask, ok bool)

	// Reset rewinds to the first Mask.
	Reset()

	// Good reports whether the generator ended cleanly (no error was
	// ever raised). Once false, it stays false.
	Good() bool

	// Err returns the sticky error, if any.
	Err() error
}

// MaskFileGenerator streams Masks from a mask-list file, or parses a
// single inline mask argument, per spec.md §4.6.
type MaskFileGenerator struct {
	codec    Codec
	base     *Registry
	path     string
	lines    [][]byte
	isInline bool

	idx int
	err error
}

// NewMaskFileGenerator builds a generator for arg. If arg names an
// existing regular file, its content is read into memory once (a frozen
// snapshot, immune to concurrent modification) and split into lines.
// Otherwise arg is treated as a single inline mask body.
func NewMaskFileGenerator(codec Codec, base *Registry, arg string) (*MaskFileGenerator, error) {
	g := &MaskFileGenerator{codec: codec, base: base, path: arg}

	info, statErr := os.Stat(arg)
	if statErr == nil && info.Mode().IsRegular() {
		content, err := os.ReadFile(arg)
		if err != nil {
			return nil, newErr(ErrIO, "cannot read mask file %q: %v", arg, err)
		}
		g.lines = bytes.Split(content, []byte("\n"))
		// A trailing newline produces one spurious empty final
		// "line"; drop it so it isn't counted or parsed.
		if n := len(g.lines); n > 0 && len(g.lines[n-1]) == 0 {
			g.lines = g.lines[:n-1]
		}
		return g, nil
	}

	g.isInline = true
	g.lines = [][]byte{[]byte(arg)}
	return g, nil
}

// Next implements MaskGenerator.
func (g *MaskFileGenerator) Next() (*Mask, bool) {
	if g.err != nil {
		return nil, false
	}
	for g.idx < len(g.lines) {
		line := g.lines[g.idx]
		lineNo := g.idx + 1
		g.idx++

		var (
			mask *Mask
			err  error
		)
		if g.isInline {
			mask, err = ParseInlineMask(g.codec, g.base, line)
		} else {
			mask, err = ParseMaskLine(g.codec, g.base, line)
		}
		if err != nil {
			g.err = attachLocation(err, g.path, lineNo)
			return nil, false
		}
		if mask == nil {
			continue // comment or empty line
		}
		return mask, true
	}
	return nil, false
}

// Reset implements MaskGenerator.
func (g *MaskFileGenerator) Reset() { g.idx = 0 }

// Good implements MaskGenerator.
func (g *MaskFileGenerator) Good() bool { return g.err == nil }

// Err implements MaskGenerator.
func (g *MaskFileGenerator) Err() error { return g.err }

func attachLocation(err error, path string, line int) error {
	if me, ok := err.(*Error); ok {
		return me.WithLocation(path, line)
	}
	return err
}
