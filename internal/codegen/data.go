package codegen

import (
	"github.com/cockroachdb/errors"

	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/schema"
)

// TemplateData is the tree template units select from.
type TemplateData struct {
	Name      string                   `json:"name"`
	Title     string                   `json:"title"`
	Version   string                   `json:"version"`
	BaseURL   string                   `json:"baseUrl"`
	Endpoints []model.EndpointRecord   `json:"endpoints"`
	Types     map[string]*model.Schema `json:"types"`
	// Document holds a single summary entry, for units rendered once per
	// source.
	Document []DocumentSummary `json:"document"`
}

type DocumentSummary struct {
	Name      string            `json:"name"`
	Title     string            `json:"title"`
	Version   string            `json:"version"`
	BaseURL   string            `json:"baseUrl"`
	Endpoints []EndpointSummary `json:"endpoints"`
	Types     []string          `json:"types"`
}

type EndpointSummary struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// BuildTemplateData prepares doc for rendering. Every type is hoisted and
// carries the definitions it transitively references. Primitive parameter
// entries get no type, since endpoints name their kind directly.
func BuildTemplateData(doc *model.RestAPIDocument) (*TemplateData, error) {
	table := doc.Types
	if table == nil {
		table = model.NewSchemaTable()
	}

	primitive := make(map[string]bool, len(doc.PrimitiveParameters))
	for _, name := range doc.PrimitiveParameters {
		primitive[name] = true
	}

	names := make([]string, 0, table.Len())
	types := make(map[string]*model.Schema, table.Len())
	for _, name := range table.Names() {
		if primitive[name] {
			continue
		}
		names = append(names, name)
		s, _ := table.Get(name)
		attached, err := schema.AttachDefinitions(schema.Hoist(s), table)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", name)
		}
		types[name] = attached
	}

	summary := DocumentSummary{
		Name:      doc.Name,
		Title:     doc.Title,
		Version:   doc.Version,
		BaseURL:   doc.BaseURL,
		Endpoints: make([]EndpointSummary, len(doc.Endpoints)),
		Types:     names,
	}
	for i, e := range doc.Endpoints {
		summary.Endpoints[i] = EndpointSummary{Name: e.Name, Method: e.Method, Path: e.Path}
	}

	endpoints := doc.Endpoints
	if endpoints == nil {
		endpoints = []model.EndpointRecord{}
	}
	return &TemplateData{
		Name:      doc.Name,
		Title:     doc.Title,
		Version:   doc.Version,
		BaseURL:   doc.BaseURL,
		Endpoints: endpoints,
		Types:     types,
		Document:  []DocumentSummary{summary},
	}, nil
}
