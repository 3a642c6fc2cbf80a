package extract

import (
	"strings"

	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/naming"
)

// AnyType is the type name of a parameter, body or response that declares
// no schema.
const AnyType = "any"

// variant is one media type of a body or response together with its schema.
type variant struct {
	mediaType string
	schema    *model.Schema
}

func (x *extractor) endpoint(path, method string, op map[string]any, shared []any) (model.EndpointRecord, error) {
	upper := strings.ToUpper(method)
	e := model.EndpointRecord{
		Name:        str(op["operationId"]),
		OperationID: str(op["operationId"]),
		Method:      upper,
		Path:        path,
		Summary:     str(op["summary"]),
		Description: str(op["description"]),
		Tags:        stringList(op["tags"]),
		Parameters: map[string][]model.ParameterSpec{
			model.InQuery:  {},
			model.InPath:   {},
			model.InHeader: {},
		},
		Body:           []model.BodyVariant{},
		Responses:      []model.ResponseVariant{},
		ErrorResponses: []model.ResponseVariant{},
	}
	if e.Name == "" {
		e.Name = upper + " " + path
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	params, err := x.mergeParameters(list(op["parameters"]), shared)
	if err != nil {
		return e, err
	}
	for i, p := range params {
		pos := naming.Position{Path: path, Method: method, Role: naming.RoleParameter, Index: i}
		if err := x.parameter(&e, op, pos, p); err != nil {
			return e, err
		}
	}

	if err := x.requestBody(&e, op, path, method); err != nil {
		return e, err
	}
	if err := x.responses(&e, op, path, method); err != nil {
		return e, err
	}
	return e, nil
}

// mergeParameters returns the operation's parameters followed by the
// path-level parameters it does not override. A parameter is identified by
// its name and location.
func (x *extractor) mergeParameters(own, shared []any) ([]map[string]any, error) {
	var out []map[string]any
	seen := make(map[string]bool)
	for _, raw := range own {
		p, err := x.deref(raw)
		if err != nil {
			return nil, err
		}
		seen[str(p["in"])+"\x00"+str(p["name"])] = true
		out = append(out, p)
	}
	for _, raw := range shared {
		p, err := x.deref(raw)
		if err != nil {
			return nil, err
		}
		if seen[str(p["in"])+"\x00"+str(p["name"])] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (x *extractor) parameter(e *model.EndpointRecord, op map[string]any, pos naming.Position, p map[string]any) error {
	in := str(p["in"])
	if in == "body" {
		return x.bodyParameter(e, op, pos, p)
	}

	raw := p["schema"]
	if raw == nil && p["type"] != nil {
		raw = parameterSchema(p)
	}

	typeName, err := x.typeName(pos, model.SchemaFromRaw(raw))
	if err != nil {
		return err
	}
	e.Parameters[in] = append(e.Parameters[in], model.ParameterSpec{
		Name:        str(p["name"]),
		Type:        typeName,
		Required:    boolean(p["required"]) || in == model.InPath,
		Description: str(p["description"]),
		In:          in,
	})
	return nil
}

// parameterSchema lifts the schema keywords a 2.0 non-body parameter
// carries inline.
func parameterSchema(p map[string]any) map[string]any {
	s := make(map[string]any)
	for _, key := range []string{"type", "format", "items", "enum"} {
		if v, ok := p[key]; ok {
			s[key] = v
		}
	}
	return s
}

// typeName returns the type name of a single schema, registering it in the
// table when it is inline. Inline primitive parameters are still registered
// but keep their primitive kind as the type name.
func (x *extractor) typeName(pos naming.Position, s *model.Schema) (string, error) {
	switch {
	case s == nil:
		return AnyType, nil
	case s.IsReference():
		pos.Ref = s.Ref
		x.uses = append(x.uses, use{schema: s, origin: pos.Describe()})
		return naming.SchemaName(pos), nil
	}
	name := naming.SchemaName(pos)
	if err := x.table.Insert(name, s, pos.Describe()); err != nil {
		return "", err
	}
	x.uses = append(x.uses, use{schema: s, origin: pos.Describe()})
	if pos.Role == naming.RoleParameter && s.IsPrimitive() {
		x.primitives[name] = true
		return string(s.Kind), nil
	}
	return name, nil
}

// variantNames names the schemas of one body or response across its media
// types. All media types whose inline schema equals the first inline one
// share its name; diverging ones are qualified by their media type.
func (x *extractor) variantNames(pos naming.Position, variants []variant) ([]string, error) {
	names := make([]string, len(variants))
	var first *model.Schema
	for i, v := range variants {
		p := pos
		if v.schema != nil && !v.schema.IsReference() {
			if first == nil {
				first = v.schema
			} else if !first.Equal(v.schema) {
				p.MediaType = v.mediaType
			}
		}
		name, err := x.typeName(p, v.schema)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

func (x *extractor) requestBody(e *model.EndpointRecord, op map[string]any, path, method string) error {
	if op["requestBody"] == nil {
		return nil
	}
	rb, err := x.deref(op["requestBody"])
	if err != nil {
		return err
	}

	variants := contentVariants(mapping(rb["content"]))
	pos := naming.Position{Path: path, Method: method, Role: naming.RoleRequestBody}
	names, err := x.variantNames(pos, variants)
	if err != nil {
		return err
	}
	for i, v := range variants {
		e.Body = append(e.Body, model.BodyVariant{
			Type:        names[i],
			Required:    boolean(rb["required"]),
			Description: str(rb["description"]),
			MediaType:   v.mediaType,
		})
	}
	return nil
}

// bodyParameter turns a 2.0 "in: body" parameter into one body variant per
// consumed media type.
func (x *extractor) bodyParameter(e *model.EndpointRecord, op map[string]any, pos naming.Position, p map[string]any) error {
	s := model.SchemaFromRaw(p["schema"])
	pos.Role = naming.RoleRequestBody

	var variants []variant
	for _, mt := range mediaTypes(stringList(op["consumes"]), x.consumes) {
		variants = append(variants, variant{mediaType: mt, schema: s})
	}
	names, err := x.variantNames(pos, variants)
	if err != nil {
		return err
	}
	for i, v := range variants {
		e.Body = append(e.Body, model.BodyVariant{
			Type:        names[i],
			Required:    boolean(p["required"]),
			Description: str(p["description"]),
			MediaType:   v.mediaType,
		})
	}
	return nil
}

func (x *extractor) responses(e *model.EndpointRecord, op map[string]any, path, method string) error {
	responses := mapping(op["responses"])
	for _, status := range model.SortedKeys(responses) {
		var role naming.Role
		switch {
		case x.success[status]:
			role = naming.RoleSuccessResponse
		case strings.HasPrefix(status, "4"), strings.HasPrefix(status, "5"):
			role = naming.RoleErrorResponse
		default:
			continue
		}

		resp, err := x.deref(responses[status])
		if err != nil {
			return err
		}

		var variants []variant
		if content := mapping(resp["content"]); content != nil {
			variants = contentVariants(content)
		} else if resp["schema"] != nil {
			s := model.SchemaFromRaw(resp["schema"])
			for _, mt := range mediaTypes(stringList(op["produces"]), x.produces) {
				variants = append(variants, variant{mediaType: mt, schema: s})
			}
		}

		pos := naming.Position{Path: path, Method: method, Role: role, Status: status}
		names, err := x.variantNames(pos, variants)
		if err != nil {
			return err
		}
		for i, v := range variants {
			rv := model.ResponseVariant{
				Type:        names[i],
				Description: str(resp["description"]),
				MediaType:   v.mediaType,
				Status:      status,
			}
			if role == naming.RoleSuccessResponse {
				e.Responses = append(e.Responses, rv)
			} else {
				e.ErrorResponses = append(e.ErrorResponses, rv)
			}
		}
	}
	return nil
}

func contentVariants(content map[string]any) []variant {
	variants := make([]variant, 0, len(content))
	for _, mt := range model.SortedKeys(content) {
		variants = append(variants, variant{
			mediaType: mt,
			schema:    model.SchemaFromRaw(mapping(content[mt])["schema"]),
		})
	}
	return variants
}

func mediaTypes(own, global []string) []string {
	if len(own) > 0 {
		return own
	}
	if len(global) > 0 {
		return global
	}
	return []string{defaultMediaType}
}
