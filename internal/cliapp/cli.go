package cliapp

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"lv2fix/internal/core/config"
)

const versionString = "1.0.0"
const programName = "lv2fix"

const usage = `Usage: lv2fix [options] <session-file>

Fixes parameter indices in the .ardour file <session-file> and saves
a backup of the original session in <session-file>.orig.
Use - as <session-file> to read from stdin and write to stdout.

Options:
  -o <file>, -o=<file>   Write to <file> instead of modifying the session in-place (- for stdout)
  -config <file>         Path to config file (default ./lv2fix.toml)
  -dry-run               Report the edits without writing anything
  -export-catalog <db>   Write the port metadata of every known plugin to a sqlite catalog and exit
  -verbose               Enable verbose logging
  -version               Print version and exit
  -h, --help             Show this help message
`

type outputMode int

const (
	outputInPlace outputMode = iota
	outputStdout
	outputFile
)

// outputFlag is the -o value; setting it twice is an error.
type outputFlag struct {
	set  bool
	mode outputMode
	path string
}

func (o *outputFlag) String() string {
	if o == nil || !o.set {
		return ""
	}
	if o.mode == outputStdout {
		return "-"
	}
	return o.path
}

func (o *outputFlag) Set(value string) error {
	if o.set {
		return errors.New("duplicate option: -o")
	}
	o.set = true
	if value == "-" {
		o.mode = outputStdout
		return nil
	}
	if value == "" {
		return errors.New("missing argument for option -o")
	}
	o.mode = outputFile
	o.path = value
	return nil
}

type cliOptions struct {
	configPath     string
	configExplicit bool
	output         outputFlag
	dryRun         bool
	exportCatalog  string
	verbose        bool
	version        bool

	input string
	stdin bool
}

func newFlagSet(opts *cliOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.Var(&opts.output, "o", "Write to file instead of modifying the session in-place")
	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Report the edits without writing anything")
	fs.StringVar(&opts.exportCatalog, "export-catalog", "", "Export plugin port metadata to a sqlite catalog and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	return fs
}

// parseOptions accepts options before and after the session file. After
// "--" every argument is positional, and "-" is then a file name rather than
// stdin. It returns flag.ErrHelp for -h and --help.
func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := newFlagSet(&opts)

	var positional []string
	rest := args
	for len(rest) > 0 {
		if err := fs.Parse(rest); err != nil {
			return cliOptions{}, err
		}
		remaining := fs.Args()
		if endedByTerminator(fs, rest[:len(rest)-len(remaining)]) {
			if len(positional) == 0 && len(remaining) > 0 {
				opts.input = remaining[0]
				positional = append(positional, remaining[0])
				remaining = remaining[1:]
			}
			positional = append(positional, remaining...)
			break
		}
		if len(remaining) == 0 {
			break
		}
		if len(positional) == 0 {
			opts.input = remaining[0]
			opts.stdin = remaining[0] == "-"
		}
		positional = append(positional, remaining[0])
		rest = remaining[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.configExplicit = true
		}
	})

	if opts.version || opts.exportCatalog != "" {
		if len(positional) > 0 && opts.exportCatalog != "" {
			return cliOptions{}, fmt.Errorf("unexpected argument: %s", positional[0])
		}
		return opts, nil
	}
	switch {
	case len(positional) == 0:
		return cliOptions{}, errors.New("missing argument")
	case len(positional) > 1:
		return cliOptions{}, fmt.Errorf("unexpected argument: %s", positional[1])
	}
	if opts.stdin && opts.output.mode == outputInPlace {
		opts.output.mode = outputStdout
	}
	return opts, nil
}

// endedByTerminator reports whether the flag set stopped at "--" rather than
// at a positional argument. consumed is the part of the input Parse used.
func endedByTerminator(fs *flag.FlagSet, consumed []string) bool {
	n := len(consumed)
	if n == 0 || consumed[n-1] != "--" {
		return false
	}
	if n == 1 {
		return true
	}
	prev := consumed[n-2]
	if !strings.HasPrefix(prev, "-") || strings.Contains(prev, "=") {
		return true
	}
	f := fs.Lookup(strings.TrimLeft(prev, "-"))
	if f == nil {
		return true
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return true
	}
	// "--" was the value of the previous flag, e.g. -o --.
	return false
}
