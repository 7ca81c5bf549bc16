package batch

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrPathConflict indicates a non-directory file occupies a directory path
	ErrPathConflict = errors.New("path exists and is not a directory")

	// ErrDirectoryNotFound indicates the run directory does not exist
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrUnknownParent indicates a parent job reference names no earlier job
	ErrUnknownParent = errors.New("unknown parent job")

	// ErrSubmissionFailed indicates the submit executable failed
	ErrSubmissionFailed = errors.New("job submission failed")

	// ErrInvalidParentMode indicates parent_mode is neither "ok" nor "any"
	ErrInvalidParentMode = errors.New("invalid parent mode")
)

// PathConflictError reports a file sitting where a directory should be created.
type PathConflictError struct {
	Path string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrPathConflict, e.Path)
}

// Is allows errors.Is(err, ErrPathConflict)
func (e *PathConflictError) Is(target error) bool {
	return target == ErrPathConflict
}

// DirectoryNotFoundError reports a missing run directory.
type DirectoryNotFoundError struct {
	JobName string
	Path    string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("run directory for job %s: %v: %s", e.JobName, ErrDirectoryNotFound, e.Path)
}

// Is allows errors.Is(err, ErrDirectoryNotFound)
func (e *DirectoryNotFoundError) Is(target error) bool {
	return target == ErrDirectoryNotFound
}

// UnknownParentError reports a dependency on a job that was not submitted earlier.
type UnknownParentError struct {
	JobName string // Job carrying the reference
	Parent  string // Unresolved reference
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("job %s depends on %q: %v", e.JobName, e.Parent, ErrUnknownParent)
}

// Is allows errors.Is(err, ErrUnknownParent)
func (e *UnknownParentError) Is(target error) bool {
	return target == ErrUnknownParent
}

// SubmissionError represents an error during job submission
type SubmissionError struct {
	Scheduler string   // Scheduler kind
	JobName   string   // Job name
	Command   []string // Submit argv
	Output    string   // Scheduler output
	Err       error    // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s submission failed for job %s: %v\nOutput: %s",
			e.Scheduler, e.JobName, e.Err, e.Output)
	}
	return fmt.Sprintf("%s submission failed for job %s: %v",
		e.Scheduler, e.JobName, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrSubmissionFailed)
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler string, jobName string, command []string, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		JobName:   jobName,
		Command:   command,
		Output:    output,
		Err:       err,
	}
}

// IsPathConflict checks if an error is a PathConflictError
func IsPathConflict(err error) bool {
	var pe *PathConflictError
	return errors.As(err, &pe)
}

// IsDirectoryNotFound checks if an error is a DirectoryNotFoundError
func IsDirectoryNotFound(err error) bool {
	var de *DirectoryNotFoundError
	return errors.As(err, &de)
}

// IsUnknownParent checks if an error is an UnknownParentError
func IsUnknownParent(err error) bool {
	var ue *UnknownParentError
	return errors.As(err, &ue)
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
