package model

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

type Kind string

const (
	KindAny       Kind = ""
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindInteger   Kind = "integer"
	KindBoolean   Kind = "boolean"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindReference Kind = "reference"
)

// Prefixes of the pointer forms the passes produce.
const (
	DefinitionsPrefix         = "/definitions/"
	InternalDefinitionsPrefix = "#/internalDefinitions/"
)

// Schema is the structural description of a type. Passes over a Schema
// return new trees; a Schema reachable from the IR is never mutated.
//
// A reference node (Kind == KindReference) carries only Ref and Description.
type Schema struct {
	Kind        Kind
	Title       string
	Description string
	Format      string
	Nullable    bool
	Enum        []any

	// Object
	Properties map[string]*Schema
	Required   []string

	// Array: either Items or TupleItems is set, never both.
	Items      *Schema
	TupleItems []*Schema

	// Reference
	Ref string

	// InternalDefinitions holds subschemas extracted by the hoister.
	InternalDefinitions map[string]*Schema
	// Definitions holds the transitive closure of referenced definitions
	// when attached by the resolver.
	Definitions map[string]*Schema
}

// Reference returns a reference node pointing at ref.
func Reference(ref string) *Schema {
	return &Schema{Kind: KindReference, Ref: ref}
}

// RefName extracts the definition name from a pointer: the terminal path
// segment.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// IsInternalRef reports whether ref points into a hoisted internal definition.
func IsInternalRef(ref string) bool {
	return strings.HasPrefix(ref, InternalDefinitionsPrefix)
}

func (s *Schema) IsReference() bool {
	return s != nil && s.Kind == KindReference
}

// IsPrimitive reports whether the schema is a scalar kind.
func (s *Schema) IsPrimitive() bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case KindString, KindNumber, KindInteger, KindBoolean:
		return true
	}
	return false
}

func (s *Schema) IsObject() bool {
	return s != nil && s.Kind == KindObject
}

func (s *Schema) IsArray() bool {
	return s != nil && s.Kind == KindArray
}

// Clone returns a deep copy. Nil-ness of maps and slices is preserved so
// that clones compare Equal to their source.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	if s.Enum != nil {
		c.Enum = append([]any(nil), s.Enum...)
	}
	if s.Required != nil {
		c.Required = append([]string(nil), s.Required...)
	}
	c.Properties = cloneMap(s.Properties)
	c.Items = s.Items.Clone()
	if s.TupleItems != nil {
		c.TupleItems = make([]*Schema, len(s.TupleItems))
		for i, item := range s.TupleItems {
			c.TupleItems[i] = item.Clone()
		}
	}
	c.InternalDefinitions = cloneMap(s.InternalDefinitions)
	c.Definitions = cloneMap(s.Definitions)
	return &c
}

func cloneMap(m map[string]*Schema) map[string]*Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports structural equality. Required is compared as a set, and
// empty maps and lists equal absent ones.
func (s *Schema) Equal(other *Schema) bool {
	return reflect.DeepEqual(canonical(s), canonical(other))
}

func canonical(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Required = nil
	if len(s.Required) > 0 {
		c.Required = slices.Compact(slices.Sorted(slices.Values(s.Required)))
	}
	if len(s.Enum) == 0 {
		c.Enum = nil
	}
	c.Properties = canonicalMap(s.Properties)
	c.Items = canonical(s.Items)
	if s.TupleItems != nil {
		c.TupleItems = make([]*Schema, len(s.TupleItems))
		for i, item := range s.TupleItems {
			c.TupleItems[i] = canonical(item)
		}
	}
	c.InternalDefinitions = canonicalMap(s.InternalDefinitions)
	c.Definitions = canonicalMap(s.Definitions)
	return &c
}

func canonicalMap(m map[string]*Schema) map[string]*Schema {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for k, v := range m {
		out[k] = canonical(v)
	}
	return out
}

// Map renders the schema in its JSON-Schema-like form, which is the shape
// templates address.
func (s *Schema) Map() map[string]any {
	if s == nil {
		return nil
	}
	m := make(map[string]any)
	if s.Kind == KindReference {
		m["$ref"] = s.Ref
		if s.Description != "" {
			m["description"] = s.Description
		}
		return m
	}
	if s.Kind != KindAny {
		m["type"] = string(s.Kind)
	}
	if s.Title != "" {
		m["title"] = s.Title
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Format != "" {
		m["format"] = s.Format
	}
	if s.Nullable {
		m["nullable"] = true
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if s.Properties != nil {
		m["properties"] = mapOfSchemas(s.Properties)
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	if s.Items != nil {
		m["items"] = s.Items.Map()
	}
	if s.TupleItems != nil {
		items := make([]any, len(s.TupleItems))
		for i, item := range s.TupleItems {
			items[i] = item.Map()
		}
		m["items"] = items
	}
	if s.InternalDefinitions != nil {
		m["internalDefinitions"] = mapOfSchemas(s.InternalDefinitions)
	}
	if s.Definitions != nil {
		m["definitions"] = mapOfSchemas(s.Definitions)
	}
	return m
}

func mapOfSchemas(in map[string]*Schema) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v.Map()
	}
	return out
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
