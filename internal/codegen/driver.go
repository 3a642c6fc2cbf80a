// Package codegen runs generation for every configured source: load, extract,
// prepare template data and emit.
package codegen

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiranuom/intrig/internal/config"
	"github.com/tiranuom/intrig/internal/emitter"
	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/extract"
	"github.com/tiranuom/intrig/internal/loader"
	"github.com/tiranuom/intrig/internal/logger"
	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/naming"
	"github.com/tiranuom/intrig/internal/templates"
)

type Options struct {
	DryRun bool
	// Sources restricts the run to the named sources. Empty means all.
	Sources []string
}

// SourceResult is the outcome of one source.
type SourceResult struct {
	Name  string
	Root  string
	Units []emitter.UnitResult
	Err   error
}

// Files counts the files the source's units produced.
func (r SourceResult) Files() int {
	n := 0
	for _, u := range r.Units {
		n += len(u.Files)
	}
	return n
}

type Driver struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	opts    Options
	units   []emitter.TemplateUnit
	loaders map[string]*loader.Loader
	emitter *emitter.Emitter
}

// New prepares a driver for cfg. Unknown generator or source types fail
// here, before any source is read.
func New(cfg *config.Config, log *zap.SugaredLogger, opts Options) (*Driver, error) {
	if log == nil {
		log = logger.Nop()
	}

	units, err := TemplateUnits(cfg.Generator(), templatesDir(cfg))
	if err != nil {
		return nil, err
	}

	loaders := make(map[string]*loader.Loader)
	for _, src := range cfg.Sources {
		if _, ok := loaders[src.Type]; ok {
			continue
		}
		l, err := NewLoader(src.Type, cfg.Dir(), log)
		if err != nil {
			return nil, errors.Wrapf(err, "source %s", src.Name)
		}
		loaders[src.Type] = l
	}

	engine := templates.NewEngine(templates.Helpers(naming.NewCaser(cfg.Initialisms...)))
	return &Driver{
		cfg:     cfg,
		log:     log,
		opts:    opts,
		units:   units,
		loaders: loaders,
		emitter: emitter.New(engine, log, emitter.Options{
			Concurrency: cfg.Concurrency,
			DryRun:      opts.DryRun,
		}),
	}, nil
}

func templatesDir(cfg *config.Config) string {
	dir := cfg.Templates.Dir
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(cfg.Dir(), dir)
}

// Run generates every selected source. A failing source is logged and
// skipped; the returned error combines all source failures.
func (d *Driver) Run(ctx context.Context) ([]SourceResult, error) {
	log := d.log.With(logger.FieldRunID, uuid.NewString())

	var results []SourceResult
	var combined error
	for _, src := range d.cfg.Sources {
		if len(d.opts.Sources) > 0 && !slices.Contains(d.opts.Sources, src.Name) {
			continue
		}
		result := d.runSource(ctx, log, src)
		if result.Err != nil {
			log.Errorw("source failed", logger.FieldSource, src.Name, logger.FieldError, result.Err)
			combined = errors.CombineErrors(combined, result.Err)
		} else {
			log.Infow("source generated", logger.FieldSource, src.Name, logger.FieldCount, result.Files())
		}
		results = append(results, result)
	}
	return results, combined
}

func (d *Driver) runSource(ctx context.Context, log *zap.SugaredLogger, src config.Source) SourceResult {
	result := SourceResult{Name: src.Name, Root: d.cfg.OutputRoot(src.Name)}

	doc, err := d.Document(ctx, src)
	if err != nil {
		result.Err = err
		return result
	}

	data, err := BuildTemplateData(doc)
	if err != nil {
		result.Err = &errdefs.SourceError{Source: src.Name, Cause: err}
		return result
	}

	log.Debugw("emitting source",
		logger.FieldSource, src.Name,
		logger.FieldPath, result.Root,
		logger.FieldCount, len(d.units))
	result.Units, err = d.emitter.Emit(ctx, d.units, data, result.Root)
	if err != nil {
		result.Err = &errdefs.SourceError{Source: src.Name, Cause: err}
	}
	return result
}

// Document loads and extracts one source into its IR.
func (d *Driver) Document(ctx context.Context, src config.Source) (*model.RestAPIDocument, error) {
	l, ok := d.loaders[src.Type]
	if !ok {
		var err error
		l, err = NewLoader(src.Type, d.cfg.Dir(), d.log)
		if err != nil {
			return nil, &errdefs.SourceError{Source: src.Name, Cause: err}
		}
	}

	loaded, err := l.Load(ctx, LoaderSource(src))
	if err != nil {
		return nil, &errdefs.SourceError{Source: src.Name, Cause: err}
	}

	doc, err := extract.Extract(loaded.Raw, extract.Options{
		Name:            src.Name,
		SuccessStatuses: d.cfg.SuccessStatuses,
	})
	if err != nil {
		return nil, &errdefs.SourceError{Source: src.Name, Cause: err}
	}
	return doc, nil
}

// LoaderSource converts a configured source to the loader's form.
func LoaderSource(src config.Source) loader.Source {
	return loader.Source{
		Name: src.Name,
		Type: loader.SourceType(src.SourceType),
		File: src.File,
		URL:  src.URL,
	}
}
