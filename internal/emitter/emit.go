package emitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/logger"
	"github.com/tiranuom/intrig/internal/templates"
)

const (
	stagePath    = "path"
	stageContent = "content"
	stageFormat  = "format"
	stageWrite   = "write"
)

const DefaultConcurrency = 4

type Options struct {
	// Concurrency bounds how many units render at once.
	Concurrency int
	// DryRun renders everything but writes nothing.
	DryRun bool
}

// File is one rendered output. Path is relative to the emit root.
type File struct {
	Path    string
	Content []byte
}

// UnitResult reports what a unit produced. Files rendered before a failure
// are kept, and were written unless running dry.
type UnitResult struct {
	Unit  string
	Files []File
	Err   error
}

type Emitter struct {
	engine *templates.Engine
	log    *zap.SugaredLogger
	opts   Options
}

func New(engine *templates.Engine, log *zap.SugaredLogger, opts Options) *Emitter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Emitter{engine: engine, log: log, opts: opts}
}

// Emit renders every unit against data and writes the results below root.
// A failing unit stops at its first error while the others carry on; the
// returned error combines every unit failure. Results are in unit order.
func (e *Emitter) Emit(ctx context.Context, units []TemplateUnit, data any, root string) ([]UnitResult, error) {
	tree, err := Tree(data)
	if err != nil {
		return nil, err
	}

	results := make([]UnitResult, len(units))
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Concurrency)
	for i, unit := range units {
		g.Go(func() error {
			results[i] = e.emitUnit(ctx, unit, tree, root)
			return nil
		})
	}
	_ = g.Wait()

	var combined error
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		e.log.Errorw("template unit failed",
			logger.FieldTemplate, r.Unit,
			logger.FieldCount, len(r.Files),
			logger.FieldError, r.Err)
		combined = errors.CombineErrors(combined, r.Err)
	}
	return results, combined
}

func (e *Emitter) emitUnit(ctx context.Context, unit TemplateUnit, tree map[string]any, root string) UnitResult {
	result := UnitResult{Unit: unit.Name}

	items, err := Select(tree, unit)
	if err != nil {
		result.Err = err
		return result
	}

	pathTmpl, err := e.engine.Compile(unit.Name+":filePath", unit.FilePath)
	if err != nil {
		result.Err = renderError(unit, "", stagePath, err)
		return result
	}
	contentTmpl, err := e.engine.Compile(unit.Name, unit.Content)
	if err != nil {
		result.Err = renderError(unit, "", stageContent, err)
		return result
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return result
		}
		file, err := e.render(unit, item, pathTmpl, contentTmpl)
		if err == nil && !e.opts.DryRun {
			err = write(root, file)
			if err != nil {
				err = renderError(unit, item.Key, stageWrite, err)
			}
		}
		if err != nil {
			result.Err = err
			return result
		}
		e.log.Debugw("rendered file", logger.FieldTemplate, unit.Name, logger.FieldFile, file.Path)
		result.Files = append(result.Files, file)
	}

	e.log.Infow("template unit rendered", logger.FieldTemplate, unit.Name, logger.FieldCount, len(result.Files))
	return result
}

func (e *Emitter) render(unit TemplateUnit, item Item, pathTmpl, contentTmpl *templates.Template) (File, error) {
	rel, err := pathTmpl.Execute(item.Data)
	if err != nil {
		return File{}, renderError(unit, item.Key, stagePath, err)
	}
	rel = filepath.Clean(filepath.FromSlash(strings.TrimSpace(rel)))
	if rel == "." {
		return File{}, renderError(unit, item.Key, stagePath, errors.New("empty output path"))
	}
	if !filepath.IsLocal(rel) {
		return File{}, renderError(unit, item.Key, stagePath, errors.Newf("output path %q escapes the output root", rel))
	}

	content, err := contentTmpl.Execute(item.Data)
	if err != nil {
		return File{}, renderError(unit, item.Key, stageContent, err)
	}

	out := []byte(content)
	if format := formatterFor(rel); format != nil {
		out, err = format(out)
		if err != nil {
			return File{}, renderError(unit, item.Key, stageFormat, err)
		}
	}
	return File{Path: filepath.ToSlash(rel), Content: out}, nil
}

func write(root string, file File) error {
	target := filepath.Join(root, filepath.FromSlash(file.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, file.Content, 0o644)
}

func renderError(unit TemplateUnit, key, stage string, cause error) error {
	return &errdefs.TemplateRenderError{Template: unit.Name, Key: key, Stage: stage, Cause: cause}
}
