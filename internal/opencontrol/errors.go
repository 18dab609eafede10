package opencontrol

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrMalformed = errors.New("malformed input")
)

// NotFoundError reports a required file or directory that does not exist.
type NotFoundError struct {
	Kind string // "component", "system", "standard", "certification", "workspace"
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MalformedError reports a file that parsed to the wrong shape.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// ClaimError is returned when a justification is requested from a component
// that does not claim the (standard, control) pair.
type ClaimError struct {
	System    string
	Component string
	Standard  string
	Control   string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("component %s/%s does not claim %s %s", e.System, e.Component, e.Standard, e.Control)
}

func malformed(path string, format string, args ...any) error {
	return &MalformedError{Path: path, Err: fmt.Errorf(format, args...)}
}
