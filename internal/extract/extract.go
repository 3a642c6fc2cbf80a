// Package extract builds the IR of an API document: its base URL, one
// endpoint record per path and method, and the table of named schemas.
//
// The input is the generic tree a YAML or JSON decoder produces. Both
// OpenAPI 3.x and Swagger 2.0 shapes are understood; anything beyond the
// keywords the IR needs is ignored.
package extract

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/schema"
)

// Methods lists the operations of a path item in extraction order.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

const defaultMediaType = "application/json"

type Options struct {
	// Name is the source name recorded on the document.
	Name string
	// SuccessStatuses are the response codes treated as success variants.
	// Defaults to ["200"].
	SuccessStatuses []string
}

type extractor struct {
	doc      model.RawDocument
	swagger  bool
	success  map[string]bool
	table    *model.SchemaTable
	consumes []string
	produces []string

	// uses are the schemas operations point at, checked against the
	// table once every endpoint is read.
	uses       []use
	primitives map[string]bool
}

type use struct {
	schema *model.Schema
	origin string
}

// Extract builds the IR of doc.
func Extract(doc model.RawDocument, opts Options) (*model.RestAPIDocument, error) {
	version, err := checkShape(doc)
	if err != nil {
		return nil, err
	}

	statuses := opts.SuccessStatuses
	if len(statuses) == 0 {
		statuses = []string{"200"}
	}
	x := &extractor{
		doc:        doc,
		swagger:    strings.HasPrefix(version, "2"),
		success:    make(map[string]bool, len(statuses)),
		table:      model.NewSchemaTable(),
		consumes:   stringList(doc["consumes"]),
		produces:   stringList(doc["produces"]),
		primitives: make(map[string]bool),
	}
	for _, s := range statuses {
		x.success[s] = true
	}

	if err := x.components(); err != nil {
		return nil, err
	}

	endpoints, err := x.endpoints()
	if err != nil {
		return nil, err
	}
	if err := x.checkReferences(); err != nil {
		return nil, err
	}

	info := mapping(doc["info"])
	return &model.RestAPIDocument{
		Name:                opts.Name,
		Title:               str(info["title"]),
		Version:             fmt.Sprint(valueOr(info["version"], "")),
		BaseURL:             BaseURL(doc),
		Endpoints:           endpoints,
		Types:               x.table,
		PrimitiveParameters: model.SortedKeys(x.primitives),
	}, nil
}

// checkReferences fails when an operation schema, or a schema it
// reaches, references a name the table does not hold.
func (x *extractor) checkReferences() error {
	for _, u := range x.uses {
		if _, err := schema.ResolveDefinitions(u.schema, x.table); err != nil {
			return errors.Wrap(err, u.origin)
		}
	}
	return nil
}

// checkShape returns the document version marker or an
// UnrecognizedDocumentError.
func checkShape(doc model.RawDocument) (string, error) {
	if doc == nil {
		return "", &errdefs.UnrecognizedDocumentError{Reason: "empty document"}
	}
	version := doc.VersionMarker()
	if version == "" {
		return "", &errdefs.UnrecognizedDocumentError{Reason: "no openapi or swagger version marker"}
	}
	if _, ok := doc["info"].(map[string]any); !ok {
		return "", &errdefs.UnrecognizedDocumentError{Reason: "info is not a mapping"}
	}
	if _, ok := doc["paths"].(map[string]any); !ok {
		return "", &errdefs.UnrecognizedDocumentError{Reason: "paths is not a mapping"}
	}
	return version, nil
}

// BaseURL returns the first server URL of a 3.x document, or the URL a 2.0
// document assembles from schemes, host and basePath.
func BaseURL(doc model.RawDocument) string {
	if servers, ok := doc["servers"].([]any); ok && len(servers) > 0 {
		return str(mapping(servers[0])["url"])
	}

	host := str(doc["host"])
	basePath := str(doc["basePath"])
	if host == "" {
		return basePath
	}
	scheme := "https"
	if schemes := stringList(doc["schemes"]); len(schemes) > 0 {
		scheme = schemes[0]
	}
	return scheme + "://" + host + basePath
}

func (x *extractor) components() error {
	var schemas map[string]any
	if x.swagger {
		schemas = mapping(x.doc["definitions"])
	} else {
		schemas = mapping(mapping(x.doc["components"])["schemas"])
	}

	for _, name := range model.SortedKeys(schemas) {
		s := model.SchemaFromRaw(schemas[name])
		if s == nil {
			continue
		}
		if err := x.table.Insert(name, s, "components"); err != nil {
			return err
		}
	}
	return nil
}

func (x *extractor) endpoints() ([]model.EndpointRecord, error) {
	paths := mapping(x.doc["paths"])
	endpoints := make([]model.EndpointRecord, 0, len(paths))

	for _, path := range model.SortedKeys(paths) {
		item, err := x.deref(paths[path])
		if err != nil {
			return nil, errors.Wrapf(err, "path %s", path)
		}
		shared := list(item["parameters"])

		for _, method := range Methods {
			op, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			e, err := x.endpoint(path, method, op, shared)
			if err != nil {
				return nil, errors.Wrapf(err, "%s %s", strings.ToUpper(method), path)
			}
			endpoints = append(endpoints, e)
		}
	}
	return endpoints, nil
}

// deref follows a local $ref on a mapping. Mappings without a $ref are
// returned as they are.
func (x *extractor) deref(v any) (map[string]any, error) {
	m := mapping(v)
	ref, ok := m["$ref"].(string)
	if !ok {
		return m, nil
	}
	target, ok := lookupPointer(x.doc, ref)
	if !ok {
		return nil, &errdefs.MissingDefinitionError{Name: model.RefName(ref), Ref: ref}
	}
	return mapping(target), nil
}

// lookupPointer resolves a local JSON pointer (#/a/b) against doc.
func lookupPointer(doc model.RawDocument, ref string) (any, bool) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, false
	}
	var cur any = map[string]any(doc)
	for _, token := range strings.Split(ref[2:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[token]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func mapping(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}

func valueOr(v, def any) any {
	if v == nil {
		return def
	}
	return v
}

func stringList(v any) []string {
	var out []string
	for _, item := range list(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
