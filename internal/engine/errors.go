package engine

import "fmt"

// NotFoundError reports a reference to a requirement, group, media item or
// folder that does not exist. The operation that returned it changed nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError reports input the engine refuses (empty names, empty
// selections, out-of-range indexes). The operation that returned it changed nothing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func errNotFound(kind string, id any) error {
	return NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

func errInvalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}
