package types

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

// InvalidResourceTypeError is returned when a request names a resource
// type the registry does not know. The valid type list is part of the
// error payload so callers can self-correct.
type InvalidResourceTypeError struct {
	ResourceType string
	ValidTypes   []string
}

func (e *InvalidResourceTypeError) Error() string {
	return fmt.Sprintf("invalid resource type %q, valid types: %s",
		e.ResourceType, strings.Join(e.ValidTypes, ", "))
}

// InvalidCursorError covers signature mismatches, cross-type reuse and
// malformed payloads. A bad cursor is treated as a permission violation,
// not a usage mistake, so the reason stays server-side.
type InvalidCursorError struct {
	Reason string
}

func (e *InvalidCursorError) Error() string {
	return fmt.Sprintf("invalid cursor: %s", e.Reason)
}

// DependencyError wraps a failed call to the identity service or the
// datastore. Always retryable by the caller, never downgraded to an
// empty result.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// TemplateRenderError means a response template referenced a field absent
// from a matching record: the record does not conform to its declared
// schema, which is a server-side data integrity failure.
type TemplateRenderError struct {
	ResourceType string
	Field        string
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("resource type %s: record is missing field %q required by its response template",
		e.ResourceType, e.Field)
}
