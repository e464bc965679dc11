package readme

import (
	"errors"
	"fmt"
)

var ErrMalformedDoc = errors.New("malformed transformation section")

// DocError describes why a README's transformation section was rejected.
type DocError struct {
	// Path is the README path, empty when scanning in-memory content.
	Path string
	// Line is the 1-based line of the offending block, 0 if unknown.
	Line int
	// Reason is the human-readable description.
	Reason string
}

func (e *DocError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "README"
	}

	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}

	return fmt.Sprintf("%s: %s: %s", loc, ErrMalformedDoc, e.Reason)
}

func (e *DocError) Unwrap() error {
	return ErrMalformedDoc
}
