package generate

import (
	"errors"
	"fmt"
)

// ErrUnparsable matches every *ParseError.
var ErrUnparsable = errors.New("generate: unparsable model response")

// InputError reports a missing caller field. It is raised before any network call.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// ParseError reports model output that is not valid JSON or has the wrong
// top-level shape. Raw is kept for server-side logging only.
type ParseError struct {
	Kind   string
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable %s response: %s", e.Kind, e.Reason)
}

// Is makes errors.Is(err, ErrUnparsable) true for every ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrUnparsable
}
