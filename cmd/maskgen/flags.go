package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maskgen/maskgen"
)

// jobFlag is a pflag.Value for `-j J/N`, spec.md §6.
type jobFlag struct {
	spec *maskgen.JobSpec
}

func (f jobFlag) String() string {
	if f.spec.N == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", f.spec.J, f.spec.N)
}

func (f jobFlag) Set(s string) error {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return fmt.Errorf("job spec must be J/N, got %q", s)
	}
	j, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job number %q: %w", parts[0], err)
	}
	n, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job count %q: %w", parts[1], err)
	}
	if n == 0 || j < 1 || j > n {
		return fmt.Errorf("job spec must satisfy 1 <= J <= N, got %d/%d", j, n)
	}
	*f.spec = maskgen.JobSpec{J: j, N: n}
	return nil
}

func (f jobFlag) Type() string { return "J/N" }

// splitCustomCharsetArg splits the `K:VAL` argument of `-c`, where K is a
// single codepoint under codec (the first UTF-8 codepoint of the string
// in unicode mode) and must be followed by an ASCII `:`, per spec.md §6.
func splitCustomCharsetArg(codec maskgen.Codec, raw string) (int32, string, error) {
	b := []byte(raw)
	cp, n, status := codec.DecodeOne(b)
	if status != maskgen.StatusOK {
		return 0, "", fmt.Errorf("invalid -c argument encoding in %q", raw)
	}
	rest := b[n:]
	if len(rest) == 0 || rest[0] != ':' {
		return 0, "", fmt.Errorf("-c argument must be K:VAL, got %q", raw)
	}
	return cp, string(rest[1:]), nil
}
