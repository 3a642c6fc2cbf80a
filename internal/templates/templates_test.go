package templates

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiranuom/intrig/internal/model"
	"github.com/tiranuom/intrig/internal/naming"
)

func render(t *testing.T, text string, data any) string {
	t.Helper()
	tmpl, err := NewEngine(Helpers(naming.NewCaser())).Compile("test", text)
	require.NoError(t, err)
	out, err := tmpl.Execute(data)
	require.NoError(t, err)
	return out
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     any
		expected string
	}{
		{"pascalCase", `{{pascalCase "get_pet_by_id"}}`, nil, "GetPetByID"},
		{"camelCase", `{{camelCase "GetPet"}}`, nil, "getPet"},
		{"snakeCase", `{{snakeCase "getPetById"}}`, nil, "get_pet_by_id"},
		{"kebabCase", `{{kebabCase "getPetById"}}`, nil, "get-pet-by-id"},
		{"titleCase", `{{titleCase "hello big world"}}`, nil, "Hello Big World"},
		{"toUpperCase", `{{toUpperCase "get"}}`, nil, "GET"},
		{"toLowerCase", `{{toLowerCase "GET"}}`, nil, "get"},
		{"trim", `[{{trim "  x  "}}]`, nil, "[x]"},
		{"removeWhitespace", `{{removeWhitespace " a b\tc\n"}}`, nil, "abc"},
		{"substring", `{{substring "petstore" 0 3}}`, nil, "pet"},
		{"substring clamps", `{{substring "pet" 1 99}}`, nil, "et"},
		{"replace", `{{replace "a-b-c" "-" "_"}}`, nil, "a_b_c"},
		{"replace regex", `{{replace "/pet/{id}" "[{}]" ""}}`, nil, "/pet/id"},
		{"interpolateUrl", `{{interpolateUrl "/pet/{petId}/photo/{photo.id}"}}`, nil,
			"/pet/${encodeURIComponent(pathVariables.petId)}/photo/${encodeURIComponent(pathVariables.photo.id)}"},
		{"lastSegment", `{{lastSegment "#/components/schemas/Pet"}}`, nil, "Pet"},
		{"refName", `{{refName "/definitions/Tag"}}`, nil, "Tag"},
		{"ternary", `{{ternary true "a" "b"}}{{ternary false "a" "b"}}`, nil, "ab"},
		{"ifEq", `{{if ifEq .type "object"}}yes{{else}}no{{end}}`, map[string]any{"type": "object"}, "yes"},
		{"ifEq loose numbers", `{{if ifEq .n 2}}yes{{end}}`, map[string]any{"n": float64(2)}, "yes"},
		{"json", `{{json .}}`, map[string]any{"a": 1}, `{"a":1}`},
		{"dict", `{{with dict "k" "v"}}{{.k}}{{end}}`, nil, "v"},
		{"hasKey", `{{hasKey . "a"}} {{hasKey . "b"}}`, map[string]any{"a": nil}, "true false"},
		{"tsType from name", `{{tsType "integer"}} {{tsType "Pet"}} {{tsType "any"}}`, nil, "number Pet any"},
		{"goType from map", `{{goType .}}`, map[string]any{"type": "array", "items": map[string]any{"type": "integer", "format": "int64"}}, "[]int64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, render(t, tt.template, tt.data))
		})
	}
}

func TestReplaceInvalidPattern(t *testing.T) {
	tmpl, err := NewEngine(Helpers(naming.NewCaser())).Compile("bad", `{{replace "x" "(" ""}}`)
	require.NoError(t, err)

	_, err = tmpl.Execute(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "replace")
}

func TestCompileError(t *testing.T) {
	_, err := NewEngine(Helpers(naming.NewCaser())).Compile("broken", `{{if}}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
}

func TestUniqueRefs(t *testing.T) {
	data := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"b":     map[string]any{"$ref": "/definitions/Tag"},
			"a":     map[string]any{"$ref": "/definitions/Owner"},
			"inner": map[string]any{"$ref": "#/internalDefinitions/inner"},
			"list": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "/definitions/Tag"},
			},
		},
		"internalDefinitions": map[string]any{
			"inner": map[string]any{
				"properties": map[string]any{"c": map[string]any{"$ref": "#/components/schemas/Category"}},
			},
		},
	}

	require.Equal(t, []string{"Category", "Owner", "Tag"}, UniqueRefs(data))
	require.Equal(t, []string{}, UniqueRefs(map[string]any{"type": "string"}))
}

func TestUniqueRefsOnSchema(t *testing.T) {
	s := &model.Schema{Kind: model.KindArray, Items: model.Reference("#/components/schemas/Pet")}
	require.Equal(t, []string{"Pet"}, UniqueRefs(s))
}

func TestTSType(t *testing.T) {
	tests := []struct {
		name     string
		schema   *model.Schema
		expected string
	}{
		{"nil", nil, "any"},
		{"string", &model.Schema{Kind: model.KindString}, "string"},
		{"binary", &model.Schema{Kind: model.KindString, Format: "binary"}, "Blob"},
		{"enum", &model.Schema{Kind: model.KindString, Enum: []any{"a", "b"}}, `"a" | "b"`},
		{"integer", &model.Schema{Kind: model.KindInteger}, "number"},
		{"boolean nullable", &model.Schema{Kind: model.KindBoolean, Nullable: true}, "boolean | null"},
		{"ref", model.Reference("/definitions/Pet"), "Pet"},
		{"array", &model.Schema{Kind: model.KindArray, Items: &model.Schema{Kind: model.KindString}}, "string[]"},
		{"array of union", &model.Schema{Kind: model.KindArray, Items: &model.Schema{Kind: model.KindString, Enum: []any{"x", "y"}}}, `("x" | "y")[]`},
		{"tuple", &model.Schema{Kind: model.KindArray, TupleItems: []*model.Schema{{Kind: model.KindString}, {Kind: model.KindNumber}}}, "[string, number]"},
		{"empty object", &model.Schema{Kind: model.KindObject}, "Record<string, any>"},
		{"object", &model.Schema{
			Kind:     model.KindObject,
			Required: []string{"id"},
			Properties: map[string]*model.Schema{
				"id":         {Kind: model.KindInteger},
				"first-name": {Kind: model.KindString},
			},
		}, `{ "first-name"?: string; id: number; }`},
		{"any", &model.Schema{}, "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, TSType(tt.schema))
		})
	}
}

func TestGoType(t *testing.T) {
	tests := []struct {
		name     string
		schema   *model.Schema
		expected string
	}{
		{"nil schema", nil, "any"},
		{"string", &model.Schema{Kind: model.KindString}, "string"},
		{"string date-time", &model.Schema{Kind: model.KindString, Format: "date-time"}, "time.Time"},
		{"string binary", &model.Schema{Kind: model.KindString, Format: "binary"}, "[]byte"},
		{"integer", &model.Schema{Kind: model.KindInteger}, "int"},
		{"integer int32", &model.Schema{Kind: model.KindInteger, Format: "int32"}, "int32"},
		{"number float", &model.Schema{Kind: model.KindNumber, Format: "float"}, "float32"},
		{"number", &model.Schema{Kind: model.KindNumber}, "float64"},
		{"boolean", &model.Schema{Kind: model.KindBoolean}, "bool"},
		{"array of strings", &model.Schema{Kind: model.KindArray, Items: &model.Schema{Kind: model.KindString}}, "[]string"},
		{"object", &model.Schema{Kind: model.KindObject}, "map[string]any"},
		{"ref", model.Reference("#/components/schemas/Pet"), "Pet"},
		{"ref with underscores", model.Reference("#/components/schemas/my_pet"), "MyPet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, GoType(tt.schema))
		})
	}
}

func TestOwnedTypes(t *testing.T) {
	pet := &model.Schema{
		Kind: model.KindObject,
		Properties: map[string]*model.Schema{
			"address": model.Reference("#/internalDefinitions/address"),
			"tags": {
				Kind:  model.KindArray,
				Items: model.Reference("#/internalDefinitions/tags_item"),
			},
		},
	}

	require.Equal(t, "PetAddress", InternalName("Pet", "address"))
	require.Equal(t, "PetTagsItem", InternalName("pet", "tags_item"))
	require.Equal(t, "{ address?: PetAddress; tags?: PetTagsItem[]; }", TSTypeIn("Pet", pet))
	require.Equal(t, "[]PetTagsItem", GoTypeIn(naming.NewCaser(), "Pet", pet.Properties["tags"]))
	require.Equal(t, "Address", TSType(pet.Properties["address"]))
}

func TestOwnedTypeHelpers(t *testing.T) {
	data := map[string]any{
		"name": "user",
		"schema": map[string]any{
			"type":     "object",
			"required": []any{"id"},
			"properties": map[string]any{
				"id":  map[string]any{"type": "string", "format": "uuid"},
				"geo": map[string]any{"$ref": "#/internalDefinitions/geo"},
			},
		},
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"tsType with owner", `{{tsType .schema.properties.geo .name}}`, "UserGeo"},
		{"goType with owner", `{{goType .schema.properties.geo .name}}`, "UserGeo"},
		{"isRequired", `{{isRequired .schema "id"}} {{isRequired .schema "geo"}}`, "true false"},
		{"sortedKeys", `{{range sortedKeys .schema.properties}}{{.}};{{end}}`, "geo;id;"},
		{"internalName", `{{internalName .name "geo"}}`, "UserGeo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, render(t, tt.template, data))
		})
	}
}

func TestUniqueRefsSkipsDefinitions(t *testing.T) {
	data := map[string]any{
		"properties": map[string]any{
			"owner": map[string]any{"$ref": "/definitions/Owner"},
		},
		"definitions": map[string]any{
			"Owner": map[string]any{
				"properties": map[string]any{"address": map[string]any{"$ref": "/definitions/Address"}},
			},
		},
	}
	require.Equal(t, []string{"Owner"}, UniqueRefs(data))
}

func TestTypeRefs(t *testing.T) {
	endpoint := map[string]any{
		"parameters": map[string]any{
			"path":  []any{map[string]any{"name": "id", "type": "integer"}},
			"query": []any{map[string]any{"name": "filter", "type": "PetsGetParam1"}},
		},
		"body": []any{
			map[string]any{"type": "NewPet", "mediaType": "application/json"},
			map[string]any{"type": "any", "mediaType": "text/plain"},
		},
		"responses":      []any{map[string]any{"type": "Pet"}},
		"errorResponses": []any{map[string]any{"type": "Error"}, map[string]any{"type": "Pet"}},
	}

	require.Equal(t, []string{"Error", "NewPet", "Pet", "PetsGetParam1"}, TypeRefs(endpoint))
	require.Equal(t, []string{}, TypeRefs("nope"))
}
