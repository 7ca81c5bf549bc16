package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tkarna/hpclauncher/internal/params"
)

// RedirectMode selects how a task's output reaches its log file
type RedirectMode string

const (
	RedirectNone    RedirectMode = "none"
	RedirectAppend  RedirectMode = "append"
	RedirectReplace RedirectMode = "replace"
)

// Operator returns the bash redirection operator for stdout and stderr.
func (m RedirectMode) Operator() string {
	switch m {
	case RedirectAppend:
		return "&>>"
	case RedirectReplace:
		return "&>"
	default:
		return ""
	}
}

// ParseRedirectMode accepts none, append and replace (case-insensitive).
// An empty string means append.
func ParseRedirectMode(s string) (RedirectMode, error) {
	switch m := RedirectMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return RedirectAppend, nil
	case RedirectNone, RedirectAppend, RedirectReplace:
		return m, nil
	default:
		return "", fmt.Errorf("invalid %s %q: want none, append or replace", params.KeyRedirectMode, s)
	}
}

// Task is a single shell command of a job.
//
// Task is a value type. Overrides is a pointer, so Job.AddTask clones it
// before storing the task.
type Task struct {
	Command   string
	Redirect  RedirectMode
	Threaded  bool
	Overrides *params.Store // Task-level parameter layer
}

// NewTask builds a task from a command and its parameter layer. The layer
// may carry redirect_mode and threaded as well as log_file and any tag used
// in the command.
func NewTask(command string, overrides *params.Store) (Task, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Task{}, params.NewMissingParameterError("task", params.KeyCommand)
	}

	t := Task{
		Command:   command,
		Redirect:  RedirectAppend,
		Overrides: overrides.Clone(),
	}

	if s, ok := t.Overrides.String(params.KeyRedirectMode); ok {
		mode, err := ParseRedirectMode(s)
		if err != nil {
			return Task{}, err
		}
		t.Redirect = mode
	}
	if s, ok := t.Overrides.String(params.KeyThreaded); ok {
		threaded, err := strconv.ParseBool(s)
		if err != nil {
			return Task{}, fmt.Errorf("invalid %s %q: %w", params.KeyThreaded, s, err)
		}
		t.Threaded = threaded
	}
	return t, nil
}

// Copy returns a task that shares no state with t.
func (t Task) Copy() Task {
	t.Overrides = t.Overrides.Clone()
	return t
}

// LogsToFile reports whether the command output is redirected to {log_file}.
func (t Task) LogsToFile() bool {
	_, ok := t.Overrides.Get(params.KeyLogFile)
	return ok && t.Redirect.Operator() != ""
}

// CommandLine returns the command with redirection and background operator.
// The {log_file} target is filled in when the job renders.
func (t Task) CommandLine() string {
	line := t.Command
	if t.LogsToFile() {
		line += " " + t.Redirect.Operator() + " {" + params.KeyLogFile + "}"
	}
	if t.Threaded {
		line += " &"
	}
	return line
}
