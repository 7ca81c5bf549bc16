package params

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingParameter indicates a required parameter is absent after all layers were merged
	ErrMissingParameter = errors.New("missing parameter")

	// ErrInvalidDuration indicates a duration string is not in HH:MM:SS form
	ErrInvalidDuration = errors.New("invalid duration format")
)

// MissingParameterError lists required keys that no layer provides.
type MissingParameterError struct {
	Scope  string   // "job", "task", "cluster"
	Keys   []string // Absent keys in request order
	Reason string   // Optional detail (e.g. "must be > 0")
}

func (e *MissingParameterError) Error() string {
	msg := "missing parameter: " + strings.Join(e.Keys, ", ")
	if e.Scope != "" {
		msg = fmt.Sprintf("missing %s parameter: %s", e.Scope, strings.Join(e.Keys, ", "))
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Is allows errors.Is(err, ErrMissingParameter)
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// NewMissingParameterError creates a new MissingParameterError
func NewMissingParameterError(scope string, keys ...string) *MissingParameterError {
	return &MissingParameterError{
		Scope: scope,
		Keys:  keys,
	}
}

// IsMissingParameter checks if an error is a MissingParameterError
func IsMissingParameter(err error) bool {
	var me *MissingParameterError
	return errors.As(err, &me)
}
