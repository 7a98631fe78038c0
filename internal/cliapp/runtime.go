package cliapp

import (
	"bufio"
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"lv2fix/internal/core/config"
	"lv2fix/internal/core/errors"
	"lv2fix/internal/engine/diag"
	"lv2fix/internal/engine/patch"
	"lv2fix/internal/lv2"
	"lv2fix/internal/shared/observability"
	"lv2fix/internal/shared/util"

	"github.com/google/uuid"
)

func Run(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args)
	if stderrors.Is(err, flag.ErrHelp) {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\nSee `%s --help`.\n", err, programName)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "%s v%s\n", programName, versionString)
		return 0
	}

	configureLogging(stderr, opts.verbose)

	cfg, err := config.Resolve(opts.configPath, opts.configExplicit)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
	}
	defer writeMetrics(cfg)

	bag := diag.NewBag()
	world, err := lv2.Open(ctx, lv2.Options{
		Backend:     cfg.Provider.Backend,
		CatalogPath: cfg.Provider.CatalogPath,
		LV2Path:     cfg.Provider.LV2Path,
		Reporter:    bag,
	})
	if err != nil {
		slog.Error("could not retrieve lv2 metadata", "error", err)
		return 1
	}
	defer world.Close()

	if opts.exportCatalog != "" {
		n, err := lv2.ExportCatalog(ctx, world, opts.exportCatalog)
		if err != nil {
			slog.Error("failed to export catalog", "path", opts.exportCatalog, "error", err)
			return 1
		}
		slog.Info("exported port catalog", "path", opts.exportCatalog, "plugins", n)
		return 0
	}

	text, err := readInput(opts, stdin)
	if err != nil {
		slog.Error("failed to read session", "error", err)
		return 1
	}

	filter, err := patch.NewURIFilter(cfg.Filter.Include, cfg.Filter.Exclude)
	if err != nil {
		slog.Error("invalid uri filter", "error", err)
		return 1
	}
	res, err := patch.Patch(ctx, text, world, patch.Options{
		WarnOverlappingEdits: cfg.Diagnostics.WarnOverlaps(),
		Filter:               filter,
		Diagnostics:          bag,
	})
	if err != nil {
		slog.Error("failed to patch session", "input", inputName(opts), "error", err)
		return 1
	}

	summary := append(res.Stats.LogAttrs(), "diagnostics", len(res.Diagnostics))
	if !res.Output.Changed() {
		slog.Info("no changes", "input", inputName(opts))
	}
	if opts.dryRun {
		for _, e := range res.Output.Edits() {
			slog.Info("would rewrite parameter index",
				"offset", e.Location.Start, "old", text[e.Location.Start:e.Location.End], "new", e.Value)
		}
		slog.Info("dry run complete", summary...)
		return 0
	}

	dest, err := writeOutput(opts, cfg, res.Output, stdout)
	if err != nil {
		slog.Error("failed to write output", "error", err)
		return 1
	}
	slog.Info("patched session", append(summary, "output", dest)...)
	return 0
}

func configureLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger.With("run", uuid.NewString()))
}

func inputName(opts cliOptions) string {
	if opts.stdin {
		return "<stdin>"
	}
	return opts.input
}

func readInput(opts cliOptions, stdin io.Reader) (string, error) {
	if opts.stdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "could not read from stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(opts.input)
	if err != nil {
		code := errors.CodeInternal
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return "", errors.AddContext(errors.Wrap(err, code, "could not read session file"), errors.CtxPath, opts.input)
	}
	return string(data), nil
}

// writeOutput sends the patched session where the options say and returns a
// description of the destination for the run summary.
func writeOutput(opts cliOptions, cfg *config.Config, out *patch.Output, stdout io.Writer) (string, error) {
	switch opts.output.mode {
	case outputStdout:
		w := bufio.NewWriter(stdout)
		if _, err := out.WriteTo(w); err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "could not write output")
		}
		if err := w.Flush(); err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "could not write output")
		}
		return "<stdout>", nil

	case outputFile:
		if err := writeSession(opts.output.path, 0o644, out); err != nil {
			return "", err
		}
		return opts.output.path, nil

	default:
		perm := fs.FileMode(0o644)
		if info, err := os.Stat(opts.input); err == nil {
			perm = info.Mode().Perm()
		}
		backup, err := replaceWithBackup(opts.input, cfg.Backup.Extension, perm, out.WriteTo)
		if err != nil {
			return "", err
		}
		slog.Info("saved backup", "path", backup)
		return opts.input, nil
	}
}

func writeSession(path string, perm fs.FileMode, out *patch.Output) error {
	err := util.WriteFileAtomic(path, perm, func(w io.Writer) error {
		_, err := out.WriteTo(w)
		return err
	})
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "could not write output"), errors.CtxPath, path)
	}
	return nil
}

// replaceWithBackup writes the new session next to path before moving the
// original aside. A failed write leaves path untouched and creates no backup.
// It returns the backup's name.
func replaceWithBackup(path, ext string, perm fs.FileMode, writeTo func(io.Writer) (int64, error)) (string, error) {
	var backup string
	err := util.ReplaceFile(path, perm, func(w io.Writer) error {
		_, err := writeTo(w)
		return err
	}, func() error {
		var err error
		backup, err = createBackup(path, ext)
		return err
	})
	if errors.IsCode(err, errors.CodeConflict) {
		return "", err
	}
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInternal, "could not write output"), errors.CtxPath, path)
	}
	return backup, nil
}

func writeMetrics(cfg *config.Config) {
	path := cfg.Observability.MetricsFile
	if path == "" {
		return
	}
	if err := observability.WriteTextfile(path); err != nil {
		slog.Warn("failed to write metrics", "path", path, "error", err)
	}
}
