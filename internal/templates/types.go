package templates

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/naming"
)

// toSchema accepts what templates hand to type helpers: a schema, its
// generic JSON form, or a type name as recorded on parameters and variants.
func toSchema(v any) *model.Schema {
	switch s := v.(type) {
	case nil:
		return nil
	case *model.Schema:
		return s
	case model.Schema:
		return &s
	case map[string]any:
		return model.SchemaFromRaw(s)
	case string:
		switch k := model.Kind(s); k {
		case model.KindString, model.KindNumber, model.KindInteger, model.KindBoolean,
			model.KindArray, model.KindObject:
			return &model.Schema{Kind: k}
		}
		if s == "" || s == "any" {
			return nil
		}
		return model.Reference(s)
	default:
		return nil
	}
}

// InternalName is the declared name of the hoisted definition key of the
// schema named owner.
func InternalName(owner, key string) string {
	return naming.Plain.PascalCase(owner) + naming.Plain.PascalCase(key)
}

func refType(ref, owner string) string {
	if model.IsInternalRef(ref) {
		return InternalName(owner, model.RefName(ref))
	}
	return model.RefName(ref)
}

// TSType returns the TypeScript type expression of s.
func TSType(s *model.Schema) string {
	return TSTypeIn("", s)
}

// TSTypeIn is TSType for a schema owned by the named type: internal
// references resolve to that owner's hoisted definitions.
func TSTypeIn(owner string, s *model.Schema) string {
	if s == nil {
		return "any"
	}

	var t string
	switch s.Kind {
	case model.KindReference:
		t = refType(s.Ref, owner)
	case model.KindString:
		t = "string"
		if len(s.Enum) > 0 {
			t = tsLiterals(s.Enum)
		} else if s.Format == "binary" {
			t = "Blob"
		}
	case model.KindInteger, model.KindNumber:
		t = "number"
		if len(s.Enum) > 0 {
			t = tsLiterals(s.Enum)
		}
	case model.KindBoolean:
		t = "boolean"
	case model.KindArray:
		t = tsArray(owner, s)
	case model.KindObject:
		t = tsObject(owner, s)
	default:
		t = "any"
	}
	if s.Nullable {
		t += " | null"
	}
	return t
}

func tsLiterals(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			parts[i] = fmt.Sprint(v)
			continue
		}
		parts[i] = string(b)
	}
	return strings.Join(parts, " | ")
}

func tsArray(owner string, s *model.Schema) string {
	if s.TupleItems != nil {
		parts := make([]string, len(s.TupleItems))
		for i, item := range s.TupleItems {
			parts[i] = TSTypeIn(owner, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	item := TSTypeIn(owner, s.Items)
	if strings.Contains(item, " ") {
		return "(" + item + ")[]"
	}
	return item + "[]"
}

func tsObject(owner string, s *model.Schema) string {
	if len(s.Properties) == 0 {
		return "Record<string, any>"
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	var b strings.Builder
	b.WriteString("{ ")
	for _, name := range model.SortedKeys(s.Properties) {
		b.WriteString(tsKey(name))
		if !required[name] {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(TSTypeIn(owner, s.Properties[name]))
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

// tsKey quotes property names that are not valid identifiers.
func tsKey(name string) string {
	for i, r := range name {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		b, _ := json.Marshal(name)
		return string(b)
	}
	if name == "" {
		return `""`
	}
	return name
}

var goCaser = naming.NewCaser()

// GoType returns the Go type expression of s.
func GoType(s *model.Schema) string {
	return GoTypeIn(goCaser, "", s)
}

// GoTypeIn is GoType for a schema owned by the named type, spelling type
// names with caser.
func GoTypeIn(caser *naming.Caser, owner string, s *model.Schema) string {
	if s == nil {
		return "any"
	}

	switch s.Kind {
	case model.KindReference:
		if model.IsInternalRef(s.Ref) {
			return caser.PascalCase(owner) + caser.PascalCase(model.RefName(s.Ref))
		}
		return caser.PascalCase(model.RefName(s.Ref))
	case model.KindString:
		return goStringType(s.Format)
	case model.KindInteger:
		return goIntegerType(s.Format)
	case model.KindNumber:
		return goNumberType(s.Format)
	case model.KindBoolean:
		return "bool"
	case model.KindArray:
		if s.TupleItems != nil {
			return "[]any"
		}
		return "[]" + GoTypeIn(caser, owner, s.Items)
	case model.KindObject:
		return "map[string]any"
	default:
		return "any"
	}
}

func goStringType(format string) string {
	switch format {
	case "date-time", "date":
		return "time.Time"
	case "byte", "binary":
		return "[]byte"
	default:
		return "string"
	}
}

func goIntegerType(format string) string {
	switch format {
	case "int32":
		return "int32"
	case "int64":
		return "int64"
	default:
		return "int"
	}
}

func goNumberType(format string) string {
	if format == "float" {
		return "float32"
	}
	return "float64"
}
