// Package schema holds the structural passes over schema trees: reference
// collection and resolution, and hoisting of nested inline schemas.
//
// Every pass returns a new tree; inputs are never modified.
package schema

import (
	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/model"
)

// Definitions is a lookup of named schemas, satisfied by *model.SchemaTable.
type Definitions interface {
	Get(name string) (*model.Schema, bool)
}

// DefinitionMap adapts a plain map to Definitions.
type DefinitionMap map[string]*model.Schema

func (m DefinitionMap) Get(name string) (*model.Schema, bool) {
	s, ok := m[name]
	return s, ok
}

type reference struct {
	name string
	ref  string
}

// CollectReferences walks s depth-first and returns a copy in which every
// reference points at /definitions/<name>, together with the referenced
// names in first-seen order. References into the internal definitions of
// a hoisted tree are local and left alone.
func CollectReferences(s *model.Schema) (*model.Schema, []string) {
	out, refs := collect(s)
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.name
	}
	return out, names
}

func collect(s *model.Schema) (*model.Schema, []reference) {
	if s == nil {
		return nil, nil
	}
	c := &collector{seen: make(map[string]bool)}
	out := c.walk(s)
	return out, c.refs
}

type collector struct {
	seen map[string]bool
	refs []reference
}

func (c *collector) walk(s *model.Schema) *model.Schema {
	if s == nil {
		return nil
	}
	out := s.Clone()
	c.rewrite(out)
	return out
}

// rewrite works in place on a tree the collector owns.
func (c *collector) rewrite(s *model.Schema) {
	if s == nil {
		return
	}
	if s.IsReference() {
		if model.IsInternalRef(s.Ref) {
			return
		}
		name := model.RefName(s.Ref)
		if !c.seen[name] {
			c.seen[name] = true
			c.refs = append(c.refs, reference{name: name, ref: s.Ref})
		}
		s.Ref = model.DefinitionsPrefix + name
		return
	}
	for _, key := range model.SortedKeys(s.Properties) {
		c.rewrite(s.Properties[key])
	}
	c.rewrite(s.Items)
	for _, item := range s.TupleItems {
		c.rewrite(item)
	}
	for _, key := range model.SortedKeys(s.InternalDefinitions) {
		c.rewrite(s.InternalDefinitions[key])
	}
}

// ResolveDefinitions returns every definition transitively reachable from s,
// keyed by name, with their references rewritten to the canonical form.
// Each definition is visited once, so cyclic graphs terminate. A reference
// to a name defs does not hold fails with *errdefs.MissingDefinitionError.
func ResolveDefinitions(s *model.Schema, defs Definitions) (map[string]*model.Schema, error) {
	resolved := make(map[string]*model.Schema)
	if err := resolveInto(s, defs, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

func resolveInto(s *model.Schema, defs Definitions, resolved map[string]*model.Schema) error {
	_, refs := collect(s)

	var added []*model.Schema
	for _, r := range refs {
		if _, ok := resolved[r.name]; ok {
			continue
		}
		def, ok := defs.Get(r.name)
		if !ok || def == nil {
			return &errdefs.MissingDefinitionError{Name: r.name, Ref: r.ref}
		}
		rewritten, _ := collect(def)
		resolved[r.name] = rewritten
		added = append(added, def)
	}

	for _, def := range added {
		if err := resolveInto(def, defs, resolved); err != nil {
			return err
		}
	}
	return nil
}

// AttachDefinitions returns a copy of s carrying its resolved definitions.
func AttachDefinitions(s *model.Schema, defs Definitions) (*model.Schema, error) {
	resolved, err := ResolveDefinitions(s, defs)
	if err != nil {
		return nil, err
	}
	out, _ := CollectReferences(s)
	out.Definitions = resolved
	return out, nil
}
