package cli

import (
	"fmt"

	"reqtrack/internal/engine"
)

func errNotFound(kind string, id any) error {
	return engine.NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

func errInvalidArg(name, value string) error {
	return fmt.Errorf("invalid %s: %q", name, value)
}
