// Package errdefs defines the structured errors raised while building the IR
// and emitting files from it.
//
// Every error type has a matching sentinel so callers can branch with
// errors.Is and still extract the details with errors.As:
//
//	var missing *errdefs.MissingDefinitionError
//	if errors.As(err, &missing) {
//	    log.Printf("dangling reference %s", missing.Ref)
//	}
//	if errors.Is(err, errdefs.ErrNamingConflict) {
//	    // two different schemas synthesized the same name
//	}
package errdefs

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnrecognizedDocument matches any UnrecognizedDocumentError.
	ErrUnrecognizedDocument = errors.New("unrecognized document")

	// ErrMissingDefinition matches any MissingDefinitionError.
	ErrMissingDefinition = errors.New("missing definition")

	// ErrNamingConflict matches any NamingConflictError.
	ErrNamingConflict = errors.New("naming conflict")

	// ErrInvalidTemplateData matches any InvalidTemplateDataError.
	ErrInvalidTemplateData = errors.New("invalid template data")

	// ErrTemplateRender matches any TemplateRenderError.
	ErrTemplateRender = errors.New("template render failed")

	// ErrUnknownGenerator matches any UnknownGeneratorError.
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrUnknownLoader matches any UnknownLoaderError.
	ErrUnknownLoader = errors.New("unknown loader")

	// ErrSource matches any SourceError.
	ErrSource = errors.New("source failed")
)

// UnrecognizedDocumentError is returned when the input fails the minimal
// shape check of an API document.
type UnrecognizedDocumentError struct {
	Reason string
}

func (e *UnrecognizedDocumentError) Error() string {
	if e.Reason == "" {
		return "unrecognized document"
	}
	return "unrecognized document: " + e.Reason
}

func (e *UnrecognizedDocumentError) Is(target error) bool {
	return target == ErrUnrecognizedDocument
}

// MissingDefinitionError is returned when a $ref names a definition that is
// absent from the definitions table.
type MissingDefinitionError struct {
	// Name is the terminal segment of the reference.
	Name string
	// Ref is the pointer as it appeared in the schema.
	Ref string
}

func (e *MissingDefinitionError) Error() string {
	if e.Ref != "" && e.Ref != e.Name {
		return fmt.Sprintf("missing definition %q (referenced as %s)", e.Name, e.Ref)
	}
	return fmt.Sprintf("missing definition %q", e.Name)
}

func (e *MissingDefinitionError) Is(target error) bool {
	return target == ErrMissingDefinition
}

// NamingConflictError is returned when two structurally different schemas
// end up under the same name in a schema table.
type NamingConflictError struct {
	Name string
	// Origin describes where the rejected schema came from, e.g.
	// "response 200 application/json of GET /pets".
	Origin string
}

func (e *NamingConflictError) Error() string {
	msg := fmt.Sprintf("naming conflict: %q already holds a different schema", e.Name)
	if e.Origin != "" {
		msg += " (from " + e.Origin + ")"
	}
	return msg
}

func (e *NamingConflictError) Is(target error) bool {
	return target == ErrNamingConflict
}

// InvalidTemplateDataError is returned when a template's data selector does
// not resolve to a mapping or a list.
type InvalidTemplateDataError struct {
	Template string
	DataPath string
	// Got names the kind of value found at DataPath ("nil", "string", ...).
	Got string
	// Want is set when the template declared a shape the data did not match.
	Want string
}

func (e *InvalidTemplateDataError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("template %s: data at %q is %s, want %s", e.Template, e.DataPath, e.Got, e.Want)
	}
	return fmt.Sprintf("template %s: data at %q is %s, not a mapping or list", e.Template, e.DataPath, e.Got)
}

func (e *InvalidTemplateDataError) Is(target error) bool {
	return target == ErrInvalidTemplateData
}

// TemplateRenderError is returned when the template engine fails on a given
// template for a given data item.
type TemplateRenderError struct {
	Template string
	// Key identifies the data item (its _key or list index).
	Key string
	// Stage is one of "path", "content", "format" or "write".
	Stage string
	Cause error
}

func (e *TemplateRenderError) Error() string {
	msg := fmt.Sprintf("template %s", e.Template)
	if e.Key != "" {
		msg += fmt.Sprintf(" [%s]", e.Key)
	}
	if e.Stage != "" {
		msg += " " + e.Stage
	}
	msg += " failed"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TemplateRenderError) Unwrap() error {
	return e.Cause
}

func (e *TemplateRenderError) Is(target error) bool {
	return target == ErrTemplateRender
}

// UnknownGeneratorError is returned when the configured generator key has no
// registered implementation.
type UnknownGeneratorError struct {
	Key   string
	Known []string
}

func (e *UnknownGeneratorError) Error() string {
	return fmt.Sprintf("unknown generator %q (known: %s)", e.Key, strings.Join(e.Known, ", "))
}

func (e *UnknownGeneratorError) Is(target error) bool {
	return target == ErrUnknownGenerator
}

// UnknownLoaderError is returned when a source declares a type with no
// registered loader.
type UnknownLoaderError struct {
	Key   string
	Known []string
}

func (e *UnknownLoaderError) Error() string {
	return fmt.Sprintf("unknown source type %q (known: %s)", e.Key, strings.Join(e.Known, ", "))
}

func (e *UnknownLoaderError) Is(target error) bool {
	return target == ErrUnknownLoader
}

// SourceError wraps a failure that aborted processing of a single source.
type SourceError struct {
	Source string
	Cause  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

func (e *SourceError) Is(target error) bool {
	return target == ErrSource
}
