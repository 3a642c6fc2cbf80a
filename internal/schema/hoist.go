package schema

import (
	"strconv"

	"github.com/tiranuom/intrig/internal/model"
)

// Hoist returns a copy of s in which every inline object found under
// properties, and every object or array found as array items, is moved into
// the top-level InternalDefinitions map and replaced by a reference to
// #/internalDefinitions/<key>.
//
// Keys follow the position of the extracted schema: an object property p is
// stored as "p", the items of an array property p as "p_item" and the i-th
// tuple entry as "p_item_i". When a key is already bound to a different
// schema the parent's key is prepended, then a numeric suffix is added.
//
// The result always has a non-nil InternalDefinitions. Hoisting an already
// hoisted tree returns an equal tree.
func Hoist(s *model.Schema) *model.Schema {
	if s == nil {
		return nil
	}
	out := s.Clone()
	h := &hoister{defs: out.InternalDefinitions}
	if h.defs == nil {
		h.defs = make(map[string]*model.Schema)
	}
	out.InternalDefinitions = nil

	h.visit(out, "")
	for _, key := range model.SortedKeys(h.defs) {
		h.visit(h.defs[key], key)
	}

	out.InternalDefinitions = h.defs
	return out
}

type hoister struct {
	defs map[string]*model.Schema
}

// visit flattens the direct children of s in place.
func (h *hoister) visit(s *model.Schema, key string) {
	if s == nil || s.IsReference() {
		return
	}
	if s.IsObject() {
		for _, name := range model.SortedKeys(s.Properties) {
			prop := s.Properties[name]
			switch {
			case prop.IsObject():
				s.Properties[name] = h.extract(prop, name, key)
			case prop.IsArray():
				h.visitItems(prop, name)
			}
		}
	}
	if s.IsArray() {
		h.visitItems(s, key)
	}
}

// visitItems hoists the items of array s, which sits at key p.
func (h *hoister) visitItems(s *model.Schema, p string) {
	if s.Items != nil {
		if s.Items.IsObject() || s.Items.IsArray() {
			s.Items = h.extract(s.Items, itemKey(p, -1), p)
		}
		return
	}
	for i, item := range s.TupleItems {
		if item.IsObject() || item.IsArray() {
			s.TupleItems[i] = h.extract(item, itemKey(p, i), p)
		}
	}
}

func itemKey(p string, index int) string {
	key := "item"
	if p != "" {
		key = p + "_item"
	}
	if index >= 0 {
		key += "_" + strconv.Itoa(index)
	}
	return key
}

// extract moves sub into the definitions map and returns the reference that
// replaces it. sub is flattened before it is stored.
func (h *hoister) extract(sub *model.Schema, key, parent string) *model.Schema {
	h.visit(sub, key)
	key = h.bind(key, parent, sub)
	return model.Reference(model.InternalDefinitionsPrefix + key)
}

func (h *hoister) bind(key, parent string, sub *model.Schema) string {
	candidates := []string{key}
	if parent != "" {
		candidates = append(candidates, parent+"_"+key)
	}
	for _, c := range candidates {
		if existing, ok := h.defs[c]; !ok || existing.Equal(sub) {
			h.defs[c] = sub
			return c
		}
	}
	base := candidates[len(candidates)-1]
	for n := 2; ; n++ {
		c := base + "_" + strconv.Itoa(n)
		if existing, ok := h.defs[c]; !ok || existing.Equal(sub) {
			h.defs[c] = sub
			return c
		}
	}
}

// Inline reverses Hoist: every reference into the internal definitions is
// replaced by the definition it points at, and InternalDefinitions is
// dropped. References to unknown internal keys are kept as they are.
func Inline(s *model.Schema) *model.Schema {
	if s == nil {
		return nil
	}
	defs := s.InternalDefinitions
	out := s.Clone()
	out.InternalDefinitions = nil
	return inline(out, defs, make(map[string]bool))
}

func inline(s *model.Schema, defs map[string]*model.Schema, active map[string]bool) *model.Schema {
	if s == nil {
		return nil
	}
	if s.IsReference() {
		if !model.IsInternalRef(s.Ref) {
			return s
		}
		key := model.RefName(s.Ref)
		def, ok := defs[key]
		if !ok || active[key] {
			return s
		}
		active[key] = true
		defer delete(active, key)
		return inline(def.Clone(), defs, active)
	}
	for name, prop := range s.Properties {
		s.Properties[name] = inline(prop, defs, active)
	}
	s.Items = inline(s.Items, defs, active)
	for i, item := range s.TupleItems {
		s.TupleItems[i] = inline(item, defs, active)
	}
	return s
}
