package templates

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/naming"
)

var pathVariable = regexp.MustCompile(`\{([\w.]+)\}`)

// Helpers returns the helper set templates are compiled with. caser decides
// how initialisms are spelled by the case helpers.
func Helpers(caser *naming.Caser) template.FuncMap {
	tsType := func(v any, owner ...string) string {
		return TSTypeIn(firstOr(owner, ""), toSchema(v))
	}
	goType := func(v any, owner ...string) string {
		return GoTypeIn(caser, firstOr(owner, ""), toSchema(v))
	}
	return template.FuncMap{
		"pascalCase":       caser.PascalCase,
		"camelCase":        caser.CamelCase,
		"snakeCase":        naming.SnakeCase,
		"kebabCase":        naming.KebabCase,
		"titleCase":        TitleCase,
		"toUpperCase":      strings.ToUpper,
		"toLowerCase":      strings.ToLower,
		"trim":             strings.TrimSpace,
		"removeWhitespace": RemoveWhitespace,
		"substring":        Substring,
		"replace":          Replace,
		"interpolateUrl":   InterpolateURL,
		"lastSegment":      LastSegment,
		"getUniqueRefs":    UniqueRefs,
		"typeRefs":         TypeRefs,
		"ternary":          Ternary,
		"ifEq":             IfEq,
		"tsType":           tsType,
		"goType":           goType,
		"internalName":     InternalName,
		"toSchema":         toSchema,
		"isRequired":       IsRequired,
		"sortedKeys":       SortedKeys,
		"refName":          model.RefName,
		"json":             JSON,
		"dict":             Dict,
		"hasKey":           HasKey,
		"join":             strings.Join,
		"hasPrefix":        strings.HasPrefix,
	}
}

func firstOr(values []string, def string) string {
	if len(values) == 0 {
		return def
	}
	return values[0]
}

// IsRequired reports whether name is listed in the required list of the
// given schema or its generic map form.
func IsRequired(v any, name string) bool {
	s := toSchema(v)
	if s == nil {
		return false
	}
	return slices.Contains(s.Required, name)
}

// SortedKeys returns the keys of a template map in order.
func SortedKeys(v any) []string {
	switch m := v.(type) {
	case map[string]any:
		return model.SortedKeys(m)
	case map[string]*model.Schema:
		return model.SortedKeys(m)
	}
	return []string{}
}

// TitleCase upper-cases the first letter of every word. A cases.Caser
// holds state, so each call builds its own.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func RemoveWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Substring returns the runes of s in [start, end), clamped to its bounds.
func Substring(s string, start, end int) string {
	runes := []rune(s)
	start = max(0, min(start, len(runes)))
	end = max(start, min(end, len(runes)))
	return string(runes[start:end])
}

// Replace substitutes every match of the regular expression pattern.
func Replace(s, pattern, replacement string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", errors.Wrap(err, "replace")
	}
	return re.ReplaceAllString(s, replacement), nil
}

// InterpolateURL turns a path template into the body of a TypeScript
// template literal: /pet/{id} -> /pet/${encodeURIComponent(pathVariables.id)}.
func InterpolateURL(path string) string {
	return pathVariable.ReplaceAllString(path, "$${encodeURIComponent(pathVariables.$1)}")
}

func LastSegment(s string) string {
	return model.RefName(s)
}

// UniqueRefs collects the definition names referenced anywhere in v,
// skipping internal definition references and the attached definitions
// closure. Names come back in first-seen order of a key-sorted walk.
func UniqueRefs(v any) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case *model.Schema:
			if t != nil {
				walk(t.Map())
			}
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if ref, ok := t[k].(string); ok && k == "$ref" {
					if model.IsInternalRef(ref) {
						continue
					}
					name := model.RefName(ref)
					if !seen[name] {
						seen[name] = true
						out = append(out, name)
					}
					continue
				}
				walk(t[k])
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(v)
	if out == nil {
		out = []string{}
	}
	return out
}

// TypeRefs returns the named types an endpoint record uses for its
// parameters, bodies and responses, sorted. Primitive kinds and "any" are
// left out.
func TypeRefs(endpoint any) []string {
	e, ok := endpoint.(map[string]any)
	if !ok {
		return []string{}
	}

	seen := make(map[string]bool)
	add := func(list any) {
		items, _ := list.([]any)
		for _, item := range items {
			m, _ := item.(map[string]any)
			name, _ := m["type"].(string)
			if name == "" || name == "any" || toSchema(name).Kind != model.KindReference {
				continue
			}
			seen[name] = true
		}
	}
	if params, ok := e["parameters"].(map[string]any); ok {
		for _, in := range model.SortedKeys(params) {
			add(params[in])
		}
	}
	add(e["body"])
	add(e["responses"])
	add(e["errorResponses"])

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// IfEq compares loosely: numbers of different Go types with the same value
// are equal, as are a string and a value that prints the same.
func IfEq(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func JSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Dict builds a map from alternating keys and values, for passing several
// values to a nested template.
func Dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	dict := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, errors.Newf("dict: key %v is not a string", values[i])
		}
		dict[key] = values[i+1]
	}
	return dict, nil
}

func HasKey(m any, key string) bool {
	switch t := m.(type) {
	case map[string]any:
		_, ok := t[key]
		return ok
	case map[string]*model.Schema:
		_, ok := t[key]
		return ok
	}
	return false
}
