package lv2

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"strings"

	"lv2fix/internal/core/errors"
	"lv2fix/internal/engine/diag"
	"lv2fix/internal/shared/observability"
)

const (
	BackendLilv    = "lilv"
	BackendCatalog = "catalog"
)

// Options selects and configures the metadata backend.
type Options struct {
	Backend     string
	CatalogPath string
	// LV2Path, when set, is exported as LV2_PATH before lilv scans bundles.
	LV2Path  string
	Reporter diag.Reporter
}

// Open loads plugin metadata. It is called once per run, before the session
// is read; any error is fatal to the run.
func Open(ctx context.Context, opts Options) (*World, error) {
	_, span := observability.Tracer.Start(ctx, "lv2.Open")
	defer span.End()

	backend := strings.TrimSpace(opts.Backend)
	if backend == "" {
		backend = BackendLilv
	}

	var (
		b   Backend
		err error
	)
	switch backend {
	case BackendLilv:
		if opts.LV2Path != "" {
			if err := os.Setenv("LV2_PATH", opts.LV2Path); err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "could not set LV2_PATH")
			}
		}
		slog.Debug("loading lv2 world", "lilv", lilvAvailable, "lv2Path", os.Getenv("LV2_PATH"))
		b, err = openLilv()
	case BackendCatalog:
		slog.Debug("opening port catalog", "path", opts.CatalogPath)
		b, err = openCatalog(opts.CatalogPath)
	default:
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, "unknown lv2 metadata backend"),
			errors.CtxBackend, backend,
		)
	}
	if err != nil {
		if _, ok := err.(*errors.DomainError); ok {
			return nil, errors.AddContext(err, errors.CtxBackend, backend)
		}
		code := errors.CodeInternal
		if stderrors.Is(err, os.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(
			errors.Wrap(err, code, "could not retrieve lv2 metadata"),
			errors.CtxBackend, backend,
		)
	}
	return NewWorld(b, opts.Reporter), nil
}
