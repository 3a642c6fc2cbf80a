package model

import (
	"encoding/json"

	"github.com/tiranuom/intrig/internal/errdefs"
)

// SchemaTable maps definition names to schemas. A name is bound at most once;
// re-inserting an identical schema is accepted, a divergent one is a naming
// conflict.
type SchemaTable struct {
	schemas map[string]*Schema
}

func NewSchemaTable() *SchemaTable {
	return &SchemaTable{schemas: make(map[string]*Schema)}
}

// Insert binds name to s. origin describes where s came from and is only
// used in the conflict error.
func (t *SchemaTable) Insert(name string, s *Schema, origin string) error {
	if existing, ok := t.schemas[name]; ok {
		if existing.Equal(s) {
			return nil
		}
		return &errdefs.NamingConflictError{Name: name, Origin: origin}
	}
	t.schemas[name] = s
	return nil
}

func (t *SchemaTable) Get(name string) (*Schema, bool) {
	s, ok := t.schemas[name]
	return s, ok
}

func (t *SchemaTable) Len() int {
	return len(t.schemas)
}

// Names returns the bound names in lexical order.
func (t *SchemaTable) Names() []string {
	return SortedKeys(t.schemas)
}

// Map returns a shallow copy of the table contents.
func (t *SchemaTable) Map() map[string]*Schema {
	out := make(map[string]*Schema, len(t.schemas))
	for k, v := range t.schemas {
		out[k] = v
	}
	return out
}

func (t *SchemaTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.schemas)
}
