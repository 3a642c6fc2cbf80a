package templates

import (
	"bytes"
	"text/template"

	"github.com/cockroachdb/errors"
)

// Engine compiles templates against one helper set. It is built once per run
// and handed to whatever renders; helpers are never registered globally.
type Engine struct {
	funcs template.FuncMap
}

func NewEngine(funcs template.FuncMap) *Engine {
	return &Engine{funcs: funcs}
}

// Compile parses text as a template named name.
func (e *Engine) Compile(name, text string) (*Template, error) {
	t, err := template.New(name).Funcs(e.funcs).Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing template %s", name)
	}
	return &Template{tmpl: t}, nil
}

// Template is a compiled template, safe for concurrent Execute calls.
type Template struct {
	tmpl *template.Template
}

func (t *Template) Name() string {
	return t.tmpl.Name()
}

func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "executing template %s", t.tmpl.Name())
	}
	return buf.String(), nil
}
