package maskgen

import (
	"fmt"
	"io"
)

const workingBufferSize = 8 * 1024

// RangeResult is the outcome of the counting pass and range resolution
// of spec.md §4.8.
type RangeResult struct {
	Start, EndExcl uint64
	MaxWidth       int
}

func addOverflow(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// CountAndResolve runs the counting pass over g (summing mask lengths
// with overflow detection, per spec.md §4.8) and resolves the requested
// sub-range (either `-j J/N` or `-b`/`-e`) against the total. g is reset
// before and after the counting pass so callers can immediately follow
// with the emission pass.
func CountAndResolve(g MaskGenerator, cfg RunConfig) (RangeResult, error) {
	g.Reset()
	var total uint64
	maxWidth := 0
	for {
		mask, ok := g.Next()
		if !ok {
			break
		}
		if mask.Width() > maxWidth {
			maxWidth = mask.Width()
		}
		sum, overflow := addOverflow(total, mask.Len())
		if overflow {
			return RangeResult{}, newErr(ErrOverflow, "total word count exceeds 64 bits")
		}
		total = sum
	}
	if !g.Good() {
		return RangeResult{}, g.Err()
	}

	start, endExcl, err := resolveRange(cfg, total)
	if err != nil {
		return RangeResult{}, err
	}
	g.Reset()
	return RangeResult{Start: start, EndExcl: endExcl, MaxWidth: maxWidth}, nil
}

func resolveRange(cfg RunConfig, total uint64) (start, endExcl uint64, err error) {
	if cfg.Job.set() {
		j, n := cfg.Job.J, cfg.Job.N
		if n == 0 || j < 1 || j > n {
			return 0, 0, newErr(ErrBadArgs, "invalid job spec %d/%d", j, n)
		}
		q := total / n
		r := total % n
		start = q*(j-1) + minU64(j-1, r)
		length := q
		if j <= r {
			length++
		}
		return start, start + length, nil
	}

	start = 0
	if cfg.Begin != nil {
		start = *cfg.Begin
	}
	endExcl = total
	if cfg.End != nil {
		endExcl = *cfg.End + 1
	}
	if start > endExcl || endExcl > total {
		return 0, 0, newErr(ErrBadArgs, "invalid range: begin/end outside [0, %d)", total)
	}
	return start, endExcl, nil
}

// RunRange drives g over the resolved sub-range, writing words to out
// (spec.md §4.8's emission pass). If cfg.SizeOnly is set, it instead
// writes the selected range size and returns.
func RunRange(g MaskGenerator, codec Codec, cfg RunConfig, out io.Writer) error {
	res, err := CountAndResolve(g, cfg)
	if err != nil {
		return err
	}
	if cfg.SizeOnly {
		_, err := fmt.Fprintf(out, "%d\n", res.EndExcl-res.Start)
		return err
	}
	return emitRange(g, codec, cfg, res, out)
}

func emitRange(g MaskGenerator, codec Codec, cfg RunConfig, res RangeResult, out io.Writer) error {
	todo := res.EndExcl - res.Start
	if todo == 0 {
		return nil
	}

	delim := cfg.Delimiter.Bytes()
	wordBuf := make([]int32, res.MaxWidth)
	working := make([]byte, 0, workingBufferSize)

	flush := func() error {
		if len(working) == 0 {
			return nil
		}
		_, err := out.Write(working)
		working = working[:0]
		return err
	}

	skip := res.Start
	for todo > 0 {
		mask, ok := g.Next()
		if !ok {
			if !g.Good() {
				return g.Err()
			}
			return newErr(ErrIO, "generator exhausted before reaching the requested range")
		}

		length := mask.Len()
		if length <= skip {
			skip -= length
			continue
		}

		startWithin := skip
		skip = 0
		count := minU64(todo, length-startWithin)
		width := mask.Width()
		buf := wordBuf[:width]
		mask.SetPosition(startWithin)

		for i := uint64(0); i < count; i++ {
			if i == 0 {
				mask.Current(buf)
			} else {
				mask.Advance(buf)
			}
			word := codec.EncodeStream(buf)
			needed := len(word) + len(delim)
			if len(working)+needed > cap(working) {
				if err := flush(); err != nil {
					return newErr(ErrIO, "write failed: %v", err)
				}
			}
			working = append(working, word...)
			working = append(working, delim...)
			todo--
		}
	}
	if err := flush(); err != nil {
		return newErr(ErrIO, "write failed: %v", err)
	}
	return nil
}
