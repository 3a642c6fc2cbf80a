package model

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// RawDocument is a parsed JSON/YAML API description before extraction.
// Mapping keys are always strings; the loader normalizes YAML's non-string
// keys (e.g. unquoted status codes) on the way in.
type RawDocument map[string]any

// SchemaFromRaw converts a decoded JSON-Schema-like value into a Schema.
// Unknown keywords are ignored, a missing type is inferred from
// properties/items and non-mapping input yields nil.
func SchemaFromRaw(raw any) *Schema {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	if ref, ok := m["$ref"].(string); ok {
		s := Reference(ref)
		s.Description, _ = m["description"].(string)
		return s
	}

	s := &Schema{
		Kind: rawKind(m),
	}
	s.Title, _ = m["title"].(string)
	s.Description, _ = m["description"].(string)
	s.Format, _ = m["format"].(string)
	s.Nullable, _ = m["nullable"].(bool)
	if types, ok := m["type"].([]any); ok && slices.Contains(types, any("null")) {
		s.Nullable = true
	}
	if enum, ok := m["enum"].([]any); ok && len(enum) > 0 {
		s.Enum = append([]any(nil), enum...)
	}

	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*Schema, len(props))
		for name, p := range props {
			if ps := SchemaFromRaw(p); ps != nil {
				s.Properties[name] = ps
			}
		}
	}

	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}

	switch items := m["items"].(type) {
	case map[string]any:
		s.Items = SchemaFromRaw(items)
	case []any:
		s.TupleItems = make([]*Schema, 0, len(items))
		for _, item := range items {
			if is := SchemaFromRaw(item); is != nil {
				s.TupleItems = append(s.TupleItems, is)
			}
		}
	}

	return s
}

func rawKind(m map[string]any) Kind {
	switch t := m["type"].(type) {
	case string:
		return Kind(t)
	case []any:
		// OpenAPI 3.1 type arrays: first non-null entry wins
		for _, v := range t {
			if name, ok := v.(string); ok && name != "null" {
				return Kind(name)
			}
		}
	}
	if _, ok := m["properties"]; ok {
		return KindObject
	}
	if _, ok := m["items"]; ok {
		return KindArray
	}
	return KindAny
}

// NormalizeKeys converts every mapping with non-string keys into a
// map[string]any, recursively.
func NormalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = NormalizeKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = NormalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = NormalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VersionMarker returns the openapi or swagger version of doc. Unquoted YAML
// versions decode as numbers, so 2.0 comes back as "2.0" rather than "2".
func (doc RawDocument) VersionMarker() string {
	for _, key := range []string{"openapi", "swagger"} {
		switch v := doc[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			s := strconv.FormatFloat(v, 'f', -1, 64)
			if !strings.Contains(s, ".") {
				s += ".0"
			}
			return s
		case int:
			return strconv.Itoa(v) + ".0"
		}
	}
	return ""
}
