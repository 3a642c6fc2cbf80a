package model

// Parameter locations.
const (
	InQuery    = "query"
	InPath     = "path"
	InHeader   = "header"
	InCookie   = "cookie"
	InFormData = "formData"
)

type ParameterSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	In          string `json:"in"`
}

type BodyVariant struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"mediaType"`
}

type ResponseVariant struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"mediaType"`
	Status      string `json:"status"`
}

// EndpointRecord is one (path, method) operation of the source document.
// The extractor always initializes its slices and maps, so templates can
// range over them without nil checks.
type EndpointRecord struct {
	Name           string                     `json:"name"`
	OperationID    string                     `json:"operationId,omitempty"`
	Method         string                     `json:"method"`
	Path           string                     `json:"path"`
	Summary        string                     `json:"summary,omitempty"`
	Description    string                     `json:"description,omitempty"`
	Tags           []string                   `json:"tags"`
	Parameters     map[string][]ParameterSpec `json:"parameters"`
	Body           []BodyVariant              `json:"body"`
	Responses      []ResponseVariant          `json:"responses"`
	ErrorResponses []ResponseVariant          `json:"errorResponses"`
}

// AllParameters returns the parameters of every location, ordered by
// location name.
func (e *EndpointRecord) AllParameters() []ParameterSpec {
	var out []ParameterSpec
	for _, in := range SortedKeys(e.Parameters) {
		out = append(out, e.Parameters[in]...)
	}
	return out
}

// RestAPIDocument is the IR of one source: endpoints in extraction order and
// the named schema table.
type RestAPIDocument struct {
	Name      string           `json:"name"`
	Title     string           `json:"title,omitempty"`
	Version   string           `json:"version,omitempty"`
	BaseURL   string           `json:"baseUrl,omitempty"`
	Endpoints []EndpointRecord `json:"endpoints"`
	Types     *SchemaTable     `json:"types"`
	// PrimitiveParameters names the table entries bound to inline
	// primitive parameter schemas. Endpoints record the primitive kind
	// for those parameters, so no type refers to these entries.
	PrimitiveParameters []string `json:"-"`
}
