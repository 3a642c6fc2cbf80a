package codegen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tiranuom/intrig/internal/config"
	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/model"
)

const petstore = `openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
servers:
  - url: https://petstore.example.com/v1
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: pets
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
        "500":
          description: failure
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
    post:
      operationId: createPet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/NewPet'
      responses:
        "200":
          description: created
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
  /pets/{petId}:
    get:
      operationId: showPetById
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: pet
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
          format: int64
        name:
          type: string
        owner:
          type: object
          properties:
            email:
              type: string
        tags:
          type: array
          items:
            $ref: '#/components/schemas/Tag'
    NewPet:
      type: object
      required: [name]
      properties:
        name:
          type: string
    Tag:
      type: object
      properties:
        label:
          type: string
    Error:
      type: object
      properties:
        message:
          type: string
`

func writeProject(t *testing.T, mutate func(cfg *config.Config)) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "petstore.yaml"), []byte(petstore), 0o644))

	cfg := config.Default()
	require.NoError(t, cfg.AddSource(config.Source{Name: "petstore", Type: "openapi3", File: "petstore.yaml"}))
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, config.DefaultFile)))
	return cfg
}

func readOutput(t *testing.T, root, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(content)
}

func TestRegistries(t *testing.T) {
	require.Equal(t, []string{"openapi", "openapi2", "openapi3"}, LoaderKeys())
	require.Equal(t, []string{"custom", "go", "react-ts"}, GeneratorKeys())

	_, err := NewLoader("graphql", "", nil)
	require.ErrorIs(t, err, errdefs.ErrUnknownLoader)

	l, err := NewLoader("", "", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"2.", "3."}, l.Versions())

	_, err = TemplateUnits("vue-js", "")
	require.ErrorIs(t, err, errdefs.ErrUnknownGenerator)

	_, err = TemplateUnits(CustomGenerator, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "templates directory")
}

func TestBuiltinTemplateUnits(t *testing.T) {
	tests := []struct {
		key   string
		names []string
	}{
		{"react-ts", []string{"index.tmpl", "request.tmpl", "type.tmpl"}},
		{"go", []string{"operations.tmpl", "types.tmpl"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			units, err := TemplateUnits(tt.key, "")
			require.NoError(t, err)
			names := make([]string, len(units))
			for i, u := range units {
				names[i] = u.Name
			}
			require.Equal(t, tt.names, names)
		})
	}
}

func TestTemplateUnitsOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.tmpl"),
		[]byte("---\nfilePath: index.ts\ndataPath: document\n---\n// custom\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.tmpl"),
		[]byte("---\nfilePath: extra.txt\ndataPath: document\n---\nextra\n"), 0o644))

	units, err := TemplateUnits("react-ts", dir)
	require.NoError(t, err)
	require.Len(t, units, 4)
	require.Equal(t, "extra.tmpl", units[0].Name)
	require.Equal(t, "index.tmpl", units[1].Name)
	require.Equal(t, "// custom\n", units[1].Content)
}

func TestBuildTemplateData(t *testing.T) {
	table := model.NewSchemaTable()
	require.NoError(t, table.Insert("Tag", &model.Schema{Kind: model.KindObject, Properties: map[string]*model.Schema{
		"label": {Kind: model.KindString},
	}}, "components"))
	require.NoError(t, table.Insert("Pet", &model.Schema{Kind: model.KindObject, Properties: map[string]*model.Schema{
		"owner": {Kind: model.KindObject, Properties: map[string]*model.Schema{"email": {Kind: model.KindString}}},
		"tags":  {Kind: model.KindArray, Items: model.Reference("#/components/schemas/Tag")},
	}}, "components"))

	doc := &model.RestAPIDocument{
		Name:  "petstore",
		Title: "Petstore",
		Endpoints: []model.EndpointRecord{
			{Name: "listPets", Method: "GET", Path: "/pets"},
		},
		Types: table,
	}

	data, err := BuildTemplateData(doc)
	require.NoError(t, err)

	pet := data.Types["Pet"]
	require.Equal(t, model.Reference("#/internalDefinitions/owner"), pet.Properties["owner"])
	require.Contains(t, pet.InternalDefinitions, "owner")
	require.Equal(t, "/definitions/Tag", pet.Properties["tags"].Items.Ref)
	require.Contains(t, pet.Definitions, "Tag")

	require.Len(t, data.Document, 1)
	require.Equal(t, []string{"Pet", "Tag"}, data.Document[0].Types)
	require.Equal(t, []EndpointSummary{{Name: "listPets", Method: "GET", Path: "/pets"}}, data.Document[0].Endpoints)
}

func TestBuildTemplateDataMissingDefinition(t *testing.T) {
	table := model.NewSchemaTable()
	require.NoError(t, table.Insert("Pet", &model.Schema{Kind: model.KindObject, Properties: map[string]*model.Schema{
		"owner": model.Reference("#/components/schemas/Ghost"),
	}}, "components"))

	_, err := BuildTemplateData(&model.RestAPIDocument{Types: table})
	require.ErrorIs(t, err, errdefs.ErrMissingDefinition)
	require.Contains(t, err.Error(), "Pet")
}

func TestBuildTemplateDataSkipsPrimitiveParameters(t *testing.T) {
	cfg := writeProject(t, nil)
	d, err := New(cfg, nil, Options{})
	require.NoError(t, err)

	doc, err := d.Document(context.Background(), cfg.Sources[0])
	require.NoError(t, err)
	require.Contains(t, doc.PrimitiveParameters, "PetsGetParam0")
	_, ok := doc.Types.Get("PetsGetParam0")
	require.True(t, ok)

	data, err := BuildTemplateData(doc)
	require.NoError(t, err)
	for _, name := range doc.PrimitiveParameters {
		require.NotContains(t, data.Types, name)
		require.NotContains(t, data.Document[0].Types, name)
	}
	require.Contains(t, data.Types, "Pet")
	require.Contains(t, data.Document[0].Types, "Pet")
}

func TestRunReactTS(t *testing.T) {
	cfg := writeProject(t, nil)

	d, err := New(cfg, zaptest.NewLogger(t).Sugar(), Options{})
	require.NoError(t, err)

	results, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	root := cfg.OutputRoot("petstore")
	require.Equal(t, root, results[0].Root)

	pet := readOutput(t, root, "components/schemas/Pet.ts")
	require.Contains(t, pet, "import type { Tag } from './Tag';")
	require.Contains(t, pet, "type PetOwner = { email?: string; };")
	require.Contains(t, pet, "export type Pet = { id: number; name: string; owner?: PetOwner; tags?: Tag[]; };")

	list := readOutput(t, root, "requests/listPets.ts")
	require.Contains(t, list, "import type { Error } from '../components/schemas/Error';")
	require.Contains(t, list, `"limit"?: number;`)
	require.Contains(t, list, "Promise<PetsGetSuccessResponse>")
	require.Contains(t, list, "method: 'GET'")

	show := readOutput(t, root, "requests/showPetById.ts")
	require.Contains(t, show, "${encodeURIComponent(pathVariables.petId)}")
	require.Contains(t, show, `"petId": string;`)

	create := readOutput(t, root, "requests/createPet.ts")
	require.Contains(t, create, "body: NewPet")
	require.Contains(t, create, "'Content-Type': 'application/json'")

	index := readOutput(t, root, "index.ts")
	require.Contains(t, index, `export const baseUrl = "https://petstore.example.com/v1";`)
	require.Contains(t, index, "export { listPets } from './requests/listPets';")
}

func TestRunGo(t *testing.T) {
	cfg := writeProject(t, func(cfg *config.Config) {
		cfg.Type = "go"
		cfg.Lang = ""
	})

	d, err := New(cfg, zaptest.NewLogger(t).Sugar(), Options{})
	require.NoError(t, err)

	_, err = d.Run(context.Background())
	require.NoError(t, err)

	root := cfg.OutputRoot("petstore")
	pet := readOutput(t, root, "pet.go")
	require.Contains(t, pet, "// Code generated by intrig. DO NOT EDIT.")
	require.Contains(t, pet, "type PetOwner struct {")
	require.Contains(t, pet, "type Pet struct {")
	require.Contains(t, pet, "`json:\"owner,omitempty\"`")
	require.Contains(t, pet, "`json:\"id\"`")

	ops := readOutput(t, root, "operations.go")
	require.Contains(t, ops, `const BaseURL = "https://petstore.example.com/v1"`)
	require.Contains(t, ops, `"showPetById": {Method: "GET", Path: "/pets/{petId}"},`)
}

func TestRunIsolatesFailingSources(t *testing.T) {
	cfg := writeProject(t, func(cfg *config.Config) {
		require.NoError(t, cfg.AddSource(config.Source{Name: "broken", File: "missing.yaml"}))
	})

	d, err := New(cfg, zaptest.NewLogger(t).Sugar(), Options{})
	require.NoError(t, err)

	results, err := d.Run(context.Background())
	require.ErrorIs(t, err, errdefs.ErrSource)
	require.Len(t, results, 2)

	require.NoError(t, results[0].Err)
	require.Positive(t, results[0].Files())

	require.ErrorIs(t, results[1].Err, errdefs.ErrSource)
	require.Contains(t, results[1].Err.Error(), "broken")
}

func TestRunSelectedSourcesDryRun(t *testing.T) {
	cfg := writeProject(t, func(cfg *config.Config) {
		require.NoError(t, cfg.AddSource(config.Source{Name: "other", File: "petstore.yaml"}))
	})

	d, err := New(cfg, nil, Options{DryRun: true, Sources: []string{"other"}})
	require.NoError(t, err)

	results, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "other", results[0].Name)
	require.Positive(t, results[0].Files())

	_, err = os.Stat(cfg.OutputRoot("other"))
	require.True(t, os.IsNotExist(err))
}

func TestNewFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		target error
	}{
		{"unknown generator", func(cfg *config.Config) { cfg.Type = "vue" }, errdefs.ErrUnknownGenerator},
		{"unknown loader", func(cfg *config.Config) { cfg.Sources[0].Type = "graphql" }, errdefs.ErrUnknownLoader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeProject(t, tt.mutate)
			_, err := New(cfg, nil, Options{})
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestCustomGenerator(t *testing.T) {
	cfg := writeProject(t, func(cfg *config.Config) {
		cfg.Type = CustomGenerator
		cfg.Lang = ""
		cfg.Templates.Dir = "templates"
	})
	tmplDir := filepath.Join(cfg.Dir(), "templates")
	require.NoError(t, os.MkdirAll(tmplDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "routes.tmpl"),
		[]byte("---\nfilePath: routes.txt\ndataPath: document\nshape: list\n---\n{{range .endpoints}}{{.method}} {{.path}}\n{{end}}"), 0o644))

	d, err := New(cfg, nil, Options{})
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "GET /pets\nPOST /pets\nGET /pets/{petId}\n", readOutput(t, cfg.OutputRoot("petstore"), "routes.txt"))
}

func TestDocument(t *testing.T) {
	cfg := writeProject(t, nil)
	d, err := New(cfg, nil, Options{})
	require.NoError(t, err)

	doc, err := d.Document(context.Background(), cfg.Sources[0])
	require.NoError(t, err)
	require.Equal(t, "Petstore", doc.Title)
	require.Len(t, doc.Endpoints, 3)
	_, ok := doc.Types.Get("Pet")
	require.True(t, ok)
}
