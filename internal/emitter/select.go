package emitter

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/model"
)

const (
	KeyField   = "_key"
	ValueField = "_value"

	storeDelim = "\x1f"
)

// Item is one element a unit is rendered for.
type Item struct {
	// Key is the mapping key, or the list index for list data.
	Key  string
	Data any
}

// Tree converts v into the generic form templates see: maps, lists, strings,
// float64 numbers, booleans and nil.
func Tree(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding template data")
	}
	var tree map[string]any
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, errors.Wrap(err, "decoding template data")
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return tree, nil
}

// Select resolves the unit's dataPath against tree and expands the result
// into the items to render. An empty path or "." selects the whole tree.
func Select(tree map[string]any, unit TemplateUnit) ([]Item, error) {
	value, err := lookup(tree, unit.DataPath)
	if err != nil {
		return nil, err
	}

	got := kindOf(value)
	invalid := &errdefs.InvalidTemplateDataError{Template: unit.Name, DataPath: unit.DataPath, Got: got}
	switch unit.Shape {
	case ShapeMap, ShapeList:
		if got != string(unit.Shape) {
			invalid.Want = string(unit.Shape)
			return nil, invalid
		}
	}

	switch v := value.(type) {
	case map[string]any:
		items := make([]Item, 0, len(v))
		for _, key := range model.SortedKeys(v) {
			items = append(items, Item{Key: key, Data: withKey(key, v[key])})
		}
		return items, nil
	case []any:
		items := make([]Item, len(v))
		for i, elem := range v {
			items[i] = Item{Key: strconv.Itoa(i), Data: elem}
		}
		return items, nil
	default:
		return nil, invalid
	}
}

func lookup(tree map[string]any, dataPath string) (any, error) {
	dataPath = strings.TrimSpace(dataPath)
	if dataPath == "" || dataPath == "." {
		return tree, nil
	}
	// Data keys may contain dots, so the store splits on a separator that
	// never appears in keys.
	k := koanf.New(storeDelim)
	if err := k.Load(confmap.Provider(tree, ""), nil); err != nil {
		return nil, errors.Wrap(err, "loading template data")
	}
	return k.Get(strings.ReplaceAll(dataPath, ".", storeDelim)), nil
}

// withKey copies a mapping value and records its key under _key. Other values
// are wrapped as {_key, _value}.
func withKey(key string, value any) map[string]any {
	m, ok := value.(map[string]any)
	if !ok {
		return map[string]any{KeyField: key, ValueField: value}
	}
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[KeyField] = key
	return out
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	case map[string]any:
		return "map"
	case []any:
		return "list"
	default:
		return "value"
	}
}
