// Package emitter renders template units against the template data tree and
// writes the results under an output root.
package emitter

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v4"
)

// Shape is the data kind a unit declares it iterates over.
type Shape string

const (
	ShapeAuto Shape = "auto"
	ShapeMap  Shape = "map"
	ShapeList Shape = "list"
)

var unitExtensions = []string{".tmpl", ".hbs"}

const frontMatterFence = "---"

// TemplateUnit is one template file: its front matter plus the body that is
// rendered once per selected data item.
type TemplateUnit struct {
	Name     string `yaml:"-"`
	FilePath string `yaml:"filePath"`
	DataPath string `yaml:"dataPath"`
	Shape    Shape  `yaml:"shape"`
	Content  string `yaml:"-"`
}

// LoadUnits reads every template unit below the root of fsys, ordered by
// file name.
func LoadUnits(fsys fs.FS) ([]TemplateUnit, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isUnitFile(p) {
			return nil
		}
		names = append(names, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}
	sort.Strings(names)

	units := make([]TemplateUnit, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading template %s", name)
		}
		unit, err := ParseUnit(name, raw)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

func isUnitFile(p string) bool {
	ext := path.Ext(p)
	for _, e := range unitExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseUnit splits raw into its YAML front matter and template body.
func ParseUnit(name string, raw []byte) (TemplateUnit, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	lines := strings.SplitAfter(text, "\n")
	if strings.TrimSuffix(lines[0], "\n") != frontMatterFence {
		return TemplateUnit{}, errors.Newf("template %s: missing front matter", name)
	}
	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSuffix(lines[i], "\n") == frontMatterFence {
			closing = i
			break
		}
	}
	if closing < 0 {
		return TemplateUnit{}, errors.Newf("template %s: unterminated front matter", name)
	}
	header := strings.Join(lines[1:closing], "")
	body := strings.Join(lines[closing+1:], "")

	unit := TemplateUnit{Name: name}
	if err := yaml.Unmarshal([]byte(header), &unit); err != nil {
		return TemplateUnit{}, errors.Wrapf(err, "template %s: front matter", name)
	}
	unit.Content = body

	if strings.TrimSpace(unit.FilePath) == "" {
		return TemplateUnit{}, errors.Newf("template %s: front matter has no filePath", name)
	}
	switch unit.Shape {
	case "":
		unit.Shape = ShapeAuto
	case ShapeAuto, ShapeMap, ShapeList:
	default:
		return TemplateUnit{}, errors.Newf("template %s: unknown shape %q", name, unit.Shape)
	}
	return unit, nil
}
