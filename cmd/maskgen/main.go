package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maskgen/maskgen"
	"github.com/maskgen/maskgen/ascii"
)

const version = "0.1.0"

type cliFlags struct {
	maskMode   bool
	bruteforce bool
	unicode    bool

	job JobSpecFlag

	begin    int64
	end      int64
	output   string
	zDelim   bool
	noDelim  bool
	sizeOnly bool

	slot1, slot2, slot3, slot4 string
	custom                     []string
}

// JobSpecFlag aliases maskgen.JobSpec; jobFlag (flags.go) wraps a pointer
// to it as the pflag.Value for -j, so cobra/pflag stay out of the core
// package.
type JobSpecFlag = maskgen.JobSpec

func main() {
	var flags cliFlags
	flags.begin = -1
	flags.end = -1

	root := &cobra.Command{
		Use:     "maskgen [flags] <mask-or-maskfile|brutefile>",
		Short:   "High-throughput mask-based word enumerator",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := root.Flags()
	fs.BoolVarP(&flags.maskMode, "mask", "m", false, "single mask or mask-list file (default)")
	fs.BoolVarP(&flags.bruteforce, "bruteforce", "B", false, "bruteforce constraint file")
	fs.BoolVarP(&flags.unicode, "unicode", "u", false, "enable unicode mode (disables ?b)")
	fs.VarP(jobFlag{spec: &flags.job}, "job", "j", "job partitioning J/N")
	fs.Int64VarP(&flags.begin, "begin", "b", -1, "first index (0-based, inclusive)")
	fs.Int64VarP(&flags.end, "end", "e", -1, "last index (0-based, inclusive)")
	fs.StringVarP(&flags.output, "output", "o", "", "write to FILE (default stdout)")
	fs.BoolVarP(&flags.zDelim, "zero", "z", false, "use NUL as delimiter")
	fs.BoolVarP(&flags.noDelim, "no-delim", "n", false, "no delimiter")
	fs.BoolVarP(&flags.sizeOnly, "size", "s", false, "print selected range size and exit")
	fs.StringVarP(&flags.slot1, "slot1", "1", "", "bind name '1' to an inline charset or file")
	fs.StringVarP(&flags.slot2, "slot2", "2", "", "bind name '2' to an inline charset or file")
	fs.StringVarP(&flags.slot3, "slot3", "3", "", "bind name '3' to an inline charset or file")
	fs.StringVarP(&flags.slot4, "slot4", "4", "", "bind name '4' to an inline charset or file")
	fs.StringArrayVarP(&flags.custom, "custom", "c", nil, "bind name K to VAL (K:VAL, repeatable)")

	if err := root.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func run(flags cliFlags, target string) error {
	if flags.maskMode && flags.bruteforce {
		return &maskgen.Error{Kind: maskgen.ErrBadArgs, Message: "cannot combine --mask and --bruteforce"}
	}
	if flags.bruteforce {
		flags.maskMode = false
	}

	codec := maskgen.NewCodec(flags.unicode)

	base := maskgen.NewRegistry()
	if err := maskgen.RegisterBuiltins(base, flags.unicode); err != nil {
		return err
	}
	if err := bindSlots(base, codec, flags); err != nil {
		return err
	}
	if err := bindCustomCharsets(base, codec, flags.custom); err != nil {
		return err
	}

	cfg := maskgen.RunConfig{
		Unicode:  flags.unicode,
		SizeOnly: flags.sizeOnly,
	}
	switch {
	case flags.noDelim:
		cfg.Delimiter = maskgen.DelimNone
	case flags.zDelim:
		cfg.Delimiter = maskgen.DelimNUL
	default:
		cfg.Delimiter = maskgen.DelimNewline
	}
	if flags.job.N != 0 {
		if flags.begin >= 0 || flags.end >= 0 {
			return &maskgen.Error{Kind: maskgen.ErrBadArgs, Message: "cannot combine -j with -b/-e"}
		}
		cfg.Job = flags.job
	}
	if flags.begin >= 0 {
		v := uint64(flags.begin)
		cfg.Begin = &v
	}
	if flags.end >= 0 {
		v := uint64(flags.end)
		cfg.End = &v
	}

	var (
		gen maskgen.MaskGenerator
		err error
	)
	if flags.bruteforce {
		gen, err = maskgen.ParseBruteforceFile(codec, base, target)
	} else {
		gen, err = maskgen.NewMaskFileGenerator(codec, base, target)
	}
	if err != nil {
		return err
	}

	// Output is opened lazily, only after parsing has fully succeeded,
	// so a parse error never truncates an existing output file.
	out, closeOut, err := openOutput(flags.output)
	if err != nil {
		return err
	}
	defer closeOut()

	w := bufio.NewWriterSize(out, workingBufferSize)
	if err := maskgen.RunRange(gen, codec, cfg, w); err != nil {
		return err
	}
	return w.Flush()
}

const workingBufferSize = 8 * 1024

func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, &maskgen.Error{Kind: maskgen.ErrIO, Message: fmt.Sprintf("cannot open output %q: %v", path, err)}
	}
	return f, func() { f.Close() }, nil
}

func bindSlots(base *maskgen.Registry, codec maskgen.Codec, flags cliFlags) error {
	slots := []string{flags.slot1, flags.slot2, flags.slot3, flags.slot4}
	for i, val := range slots {
		if val == "" {
			continue
		}
		body, err := resolveCharsetValue(val)
		if err != nil {
			return err
		}
		if err := defineCharset(base, codec, int32('1'+i), body); err != nil {
			return err
		}
	}
	return nil
}

func bindCustomCharsets(base *maskgen.Registry, codec maskgen.Codec, custom []string) error {
	for _, raw := range custom {
		name, val, err := splitCustomCharsetArg(codec, raw)
		if err != nil {
			return &maskgen.Error{Kind: maskgen.ErrBadArgs, Message: err.Error()}
		}
		body, err := resolveCharsetValue(val)
		if err != nil {
			return err
		}
		if err := defineCharset(base, codec, name, body); err != nil {
			return err
		}
	}
	return nil
}

func defineCharset(base *maskgen.Registry, codec maskgen.Codec, name int32, body []byte) error {
	return maskgen.DefineCharsetFromText(base, codec, name, body)
}

// resolveCharsetValue implements spec.md §6's documented caveat: if val
// names an existing regular file, its raw bytes (trailing newlines
// included) become the charset body; otherwise val is used directly.
func resolveCharsetValue(val string) ([]byte, error) {
	info, err := os.Stat(val)
	if err == nil && info.Mode().IsRegular() {
		b, err := os.ReadFile(val)
		if err != nil {
			return nil, &maskgen.Error{Kind: maskgen.ErrIO, Message: fmt.Sprintf("cannot read %q: %v", val, err)}
		}
		return b, nil
	}
	return []byte(val), nil
}

func reportError(err error) {
	if me, ok := err.(*maskgen.Error); ok {
		fmt.Fprintln(os.Stderr, ascii.Color(ascii.Red, "%s", me.Error()))
		return
	}
	fmt.Fprintln(os.Stderr, ascii.Color(ascii.Red, "%s", err.Error()))
}

var _ = pflag.Value(jobFlag{}) // compile-time interface check
