package naming

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tiranuom/intrig/internal/model"
)

// Role is the structural role a schema plays inside an operation.
type Role int

const (
	RoleSuccessResponse Role = iota
	RoleErrorResponse
	RoleRequestBody
	RoleParameter
)

// DefaultSuccessStatus is the status whose inline schema gets the bare
// SuccessResponse suffix.
const DefaultSuccessStatus = "200"

// Position locates a schema within an operation.
type Position struct {
	Path   string
	Method string
	Role   Role
	// Status is the response status code for response roles.
	Status string
	// Index is the position in the operation's parameter list.
	Index int
	// MediaType qualifies the name when one role carries different inline
	// schemas per media type. Left empty for the first media type.
	MediaType string
	// Ref is the schema's $ref when it is not inline.
	Ref string
}

// OperationBase builds the PascalCase base name of an operation from its
// path template and method: /pet/{id}/photos + get -> PetIdPhotosGet.
//
// Segment boundaries are kept as they are in the path: only the first rune
// of each segment is upper-cased, so /petStore stays PetStore.
func OperationBase(path, method string) string {
	var b strings.Builder
	for _, seg := range strings.FieldsFunc(path, isSeparator) {
		b.WriteString(UpperFirst(seg))
	}
	b.WriteString(UpperFirst(strings.ToLower(method)))
	return b.String()
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// RefTypeName is the type name a $ref pointer resolves to: the definition
// name exactly as declared, so it stays a valid key of the schema table.
func RefTypeName(ref string) string {
	return model.RefName(ref)
}

// MediaSuffix turns a media type into a name qualifier:
// multipart/form-data -> FormData, application/xml -> Xml.
func MediaSuffix(mediaType string) string {
	sub := mediaType
	if i := strings.IndexByte(sub, '/'); i >= 0 {
		sub = sub[i+1:]
	}
	if i := strings.IndexByte(sub, ';'); i >= 0 {
		sub = sub[:i]
	}
	return Plain.PascalCase(sub)
}

// SchemaName returns the type name for the schema at pos. A referenced schema
// keeps its definition name; inline schemas get a name synthesized from the
// operation base and the role.
func SchemaName(pos Position) string {
	if pos.Ref != "" {
		return RefTypeName(pos.Ref)
	}
	name := roleName(pos)
	if pos.MediaType != "" {
		name += MediaSuffix(pos.MediaType)
	}
	return name
}

func roleName(pos Position) string {
	base := OperationBase(pos.Path, pos.Method)
	switch pos.Role {
	case RoleSuccessResponse:
		if pos.Status == "" || pos.Status == DefaultSuccessStatus {
			return base + "SuccessResponse"
		}
		return base + "SuccessResponse" + pos.Status
	case RoleErrorResponse:
		return base + "ErrorResponse" + pos.Status
	case RoleRequestBody:
		return base + "RequestBody"
	case RoleParameter:
		return base + "Param" + strconv.Itoa(pos.Index)
	}
	return base
}

func (r Role) String() string {
	switch r {
	case RoleSuccessResponse:
		return "success response"
	case RoleErrorResponse:
		return "error response"
	case RoleRequestBody:
		return "request body"
	case RoleParameter:
		return "parameter"
	}
	return "unknown"
}

// Describe renders pos for error messages, e.g.
// "error response 404 of GET /pet/{id}".
func (pos Position) Describe() string {
	var b strings.Builder
	b.WriteString(pos.Role.String())
	switch pos.Role {
	case RoleSuccessResponse, RoleErrorResponse:
		if pos.Status != "" {
			b.WriteString(" " + pos.Status)
		}
	case RoleParameter:
		b.WriteString(" " + strconv.Itoa(pos.Index))
	}
	if pos.MediaType != "" {
		b.WriteString(" (" + pos.MediaType + ")")
	}
	b.WriteString(" of " + strings.ToUpper(pos.Method) + " " + pos.Path)
	return b.String()
}
