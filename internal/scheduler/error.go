package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrProfileNotInitialized indicates a scheduler profile was used before it was built
	ErrProfileNotInitialized = errors.New("scheduler profile is not initialized")

	// ErrUnknownKind indicates an unsupported resource manager name
	ErrUnknownKind = errors.New("unknown resource manager")

	// ErrJobIDParseFailed indicates parsing job ID from output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")
)

// ParseError represents scheduler output that does not match the expected format.
// This usually means the scheduler and this tool disagree on versions.
type ParseError struct {
	Scheduler string // Scheduler kind (e.g., "slurm", "sge")
	Output    string // Raw submit output
	Reason    string // Reason for parse failure
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v: %s\nOutput: %s", e.Scheduler, ErrJobIDParseFailed, e.Reason, e.Output)
}

// Is allows errors.Is(err, ErrJobIDParseFailed)
func (e *ParseError) Is(target error) bool {
	return target == ErrJobIDParseFailed
}

// NewParseError creates a new ParseError
func NewParseError(scheduler Kind, output string, reason string) *ParseError {
	return &ParseError{
		Scheduler: string(scheduler),
		Output:    output,
		Reason:    reason,
	}
}

// IsParseError checks if an error is a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
