package codegen

import (
	"io/fs"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/tiranuom/intrig/generators"
	"github.com/tiranuom/intrig/internal/emitter"
	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/loader"
	"github.com/tiranuom/intrig/internal/model"
)

// CustomGenerator renders only the templates of the configured directory.
const CustomGenerator = "custom"

// loaders maps a source type to the document versions it accepts.
var loaders = map[string][]string{
	"openapi":  {"2.", "3."},
	"openapi2": {"2."},
	"openapi3": {"3."},
}

// builtinGenerators maps a generator key to its directory in generators.FS.
var builtinGenerators = map[string]string{
	"react-ts": "react-ts",
	"go":       "go",
}

func LoaderKeys() []string {
	return model.SortedKeys(loaders)
}

func GeneratorKeys() []string {
	keys := append(model.SortedKeys(builtinGenerators), CustomGenerator)
	sort.Strings(keys)
	return keys
}

// NewLoader returns the loader registered for key. An empty key selects
// "openapi".
func NewLoader(key, baseDir string, log *zap.SugaredLogger) (*loader.Loader, error) {
	if key == "" {
		key = "openapi"
	}
	versions, ok := loaders[key]
	if !ok {
		return nil, &errdefs.UnknownLoaderError{Key: key, Known: LoaderKeys()}
	}
	return loader.New(baseDir, log, versions...), nil
}

// TemplateUnits returns the units of the generator key. Units from
// customDir replace built-in units of the same name and add new ones.
func TemplateUnits(key, customDir string) ([]emitter.TemplateUnit, error) {
	var builtin []emitter.TemplateUnit
	if key != CustomGenerator {
		dir, ok := builtinGenerators[key]
		if !ok {
			return nil, &errdefs.UnknownGeneratorError{Key: key, Known: GeneratorKeys()}
		}
		sub, err := fs.Sub(generators.FS, dir)
		if err != nil {
			return nil, errors.Wrapf(err, "opening templates of %s", key)
		}
		builtin, err = emitter.LoadUnits(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "loading templates of %s", key)
		}
	} else if customDir == "" {
		return nil, errors.WithHint(
			errors.New("the custom generator needs a templates directory"),
			"set templates.dir in the config or pass --templates",
		)
	}

	if customDir == "" {
		return builtin, nil
	}
	custom, err := emitter.LoadUnits(os.DirFS(customDir))
	if err != nil {
		return nil, errors.Wrapf(err, "loading custom templates from %s", customDir)
	}
	return overlay(builtin, custom), nil
}

func overlay(base, override []emitter.TemplateUnit) []emitter.TemplateUnit {
	byName := make(map[string]emitter.TemplateUnit, len(base)+len(override))
	for _, u := range base {
		byName[u.Name] = u
	}
	for _, u := range override {
		byName[u.Name] = u
	}
	units := make([]emitter.TemplateUnit, 0, len(byName))
	for _, name := range model.SortedKeys(byName) {
		units = append(units, byName[name])
	}
	return units
}
