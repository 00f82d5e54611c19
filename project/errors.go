package project

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no manifest exists between a path and the filesystem root.
	ErrNotFound = errors.New("project manifest not found")

	// ErrMalformedManifest is returned when a manifest cannot be parsed.
	ErrMalformedManifest = errors.New("malformed project manifest")

	// ErrInvalidArgument marks a caller contract violation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptDocument is returned by mutations on a manifest without a <Project> root.
	ErrCorruptDocument = errors.New("project manifest has no Project root")

	// ErrUnsupportedLayout is returned when an item path does not live under the manifest directory.
	ErrUnsupportedLayout = errors.New("item path is outside the manifest directory")

	// ErrUnsupportedTarget is returned for paths that cannot carry a build action.
	ErrUnsupportedTarget = errors.New("build action cannot be changed")
)

// ArgumentError reports an invalid argument by name.
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument '%s' is invalid", e.Name)
}

// Unwrap allows errors.Is(err, ErrInvalidArgument).
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}
