// Package batch turns jobs and tasks into submission scripts and submits
// them one after another, feeding each job ID to the jobs that depend on it.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/tkarna/hpclauncher/internal/params"
	"github.com/tkarna/hpclauncher/internal/scheduler"
	"github.com/tkarna/hpclauncher/internal/template"
	"github.com/tkarna/hpclauncher/internal/utils"
)

// ParentMode selects when a dependent job may start
type ParentMode string

const (
	ParentOnSuccess ParentMode = "ok"  // afterok
	ParentOnAny     ParentMode = "any" // afterany
)

// Parent is a dependency on an earlier job, by name or by scheduler ID.
type Parent struct {
	Ref  string
	Mode ParentMode
}

// IsSet reports whether the job has a dependency
func (p Parent) IsSet() bool { return p.Ref != "" }

// Key returns the header parameter carrying the reference.
func (p Parent) Key() string {
	if p.Mode == ParentOnAny {
		return params.KeyParentAny
	}
	return params.KeyParentOK
}

// Job is one submission script: a header plus an ordered list of tasks.
type Job struct {
	Name         string
	Queue        string
	ProcessCount int
	Duration     *params.Duration
	Parent       Parent
	RunDir       string
	LogDir       string

	profile *scheduler.Profile
	layer   *params.Store // Job overrides as given by the caller
	tasks   []Task
}

// jobFields is the typed view of the merged cluster and job layers.
type jobFields struct {
	Name         string          `mapstructure:"jobname"`
	Queue        string          `mapstructure:"queue"`
	ProcessCount int             `mapstructure:"process_count"`
	Duration     params.Duration `mapstructure:"duration"`
	RunDir       string          `mapstructure:"run_dir"`
	LogDir       string          `mapstructure:"log_dir"`
	ParentOK     string          `mapstructure:"parent_job_ok"`
	ParentAny    string          `mapstructure:"parent_job_any"`
	Parent       string          `mapstructure:"parent_job"`
	ParentMode   string          `mapstructure:"parent_mode"`
}

var durationType = reflect.TypeOf(params.Duration{})

// durationHook decodes "HH:MM:SS" strings and hours/minutes/seconds maps.
func durationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	return params.DurationFromValue(data)
}

// NewJob merges the profile defaults with the job layer and checks the
// required fields (jobname, queue, process_count > 0).
func NewJob(profile *scheduler.Profile, layer *params.Store) (*Job, error) {
	if err := profile.Check(); err != nil {
		return nil, err
	}

	merged := profile.Defaults().Overlay(layer)
	if err := merged.Require(params.KeyJobName, params.KeyQueue, params.KeyProcessCount); err != nil {
		if me, ok := err.(*params.MissingParameterError); ok {
			me.Scope = "job"
		}
		return nil, err
	}

	var f jobFields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       durationHook,
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(merged.Map()); err != nil {
		return nil, fmt.Errorf("invalid job parameters: %w", err)
	}

	if f.ProcessCount <= 0 {
		me := params.NewMissingParameterError("job", params.KeyProcessCount)
		me.Reason = "must be > 0"
		return nil, me
	}

	parent, err := parentFromFields(f)
	if err != nil {
		return nil, err
	}

	j := &Job{
		Name:         f.Name,
		Queue:        f.Queue,
		ProcessCount: f.ProcessCount,
		Parent:       parent,
		RunDir:       f.RunDir,
		LogDir:       f.LogDir,
		profile:      profile,
		layer:        layer.Clone(),
	}
	if merged.Has(params.KeyDuration) && !f.Duration.IsZero() {
		d := f.Duration
		j.Duration = &d
	}
	return j, nil
}

func parentFromFields(f jobFields) (Parent, error) {
	switch {
	case f.ParentOK != "":
		return Parent{Ref: f.ParentOK, Mode: ParentOnSuccess}, nil
	case f.ParentAny != "":
		return Parent{Ref: f.ParentAny, Mode: ParentOnAny}, nil
	case f.Parent != "":
		switch strings.ToLower(strings.TrimSpace(f.ParentMode)) {
		case "", "ok", "afterok":
			return Parent{Ref: f.Parent, Mode: ParentOnSuccess}, nil
		case "any", "afterany":
			return Parent{Ref: f.Parent, Mode: ParentOnAny}, nil
		default:
			return Parent{}, fmt.Errorf("%w: %q (want ok or any)", ErrInvalidParentMode, f.ParentMode)
		}
	}
	return Parent{}, nil
}

// Profile returns the scheduler profile the job renders for
func (j *Job) Profile() *scheduler.Profile { return j.profile }

// Tasks returns a copy of the task list
func (j *Job) Tasks() []Task {
	out := make([]Task, len(j.tasks))
	copy(out, j.tasks)
	return out
}

// AddTask appends a copy of task. With threaded=true the copy runs in the
// background; tasks that must run strictly in sequence should be added
// un-threaded and last.
func (j *Job) AddTask(task Task, threaded bool) {
	t := task.Copy()
	if threaded {
		t.Threaded = true
	}
	j.tasks = append(j.tasks, t)
}

// AddNewTask builds a task from command and overrides and appends it.
func (j *Job) AddNewTask(command string, overrides *params.Store) error {
	t, err := NewTask(command, overrides)
	if err != nil {
		return err
	}
	j.AddTask(t, false)
	return nil
}

// clone returns a copy of j that shares no task or layer state.
func (j *Job) clone() *Job {
	c := *j
	c.layer = j.layer.Clone()
	c.tasks = make([]Task, len(j.tasks))
	for i, t := range j.tasks {
		c.tasks[i] = t.Copy()
	}
	if j.Duration != nil {
		d := *j.Duration
		c.Duration = &d
	}
	return &c
}

// ScriptName is the file the script is written to: batch_<jobname>.sub
func (j *Job) ScriptName() string {
	return "batch_" + strings.ReplaceAll(j.Name, "/", "--") + ".sub"
}

// LogDirPath returns the log directory on disk; relative paths are taken
// from the run directory. Empty when no log_dir is set.
func (j *Job) LogDirPath() string {
	if j.LogDir == "" {
		return ""
	}
	if filepath.IsAbs(j.LogDir) || j.RunDir == "" {
		return j.LogDir
	}
	return filepath.Join(j.RunDir, j.LogDir)
}

// LogFilePath returns the job log file on disk, or "" when none is declared.
func (j *Job) LogFilePath() string {
	eff := j.effective()
	logFile, ok := eff.String(params.KeyLogFile)
	if !ok || logFile == "" {
		return ""
	}
	logDir, _ := eff.String(params.KeyLogDir)
	path := template.Substitute(qualifyLogFile(logDir, logFile), eff.Strings())
	if !filepath.IsAbs(path) && j.RunDir != "" {
		path = filepath.Join(j.RunDir, path)
	}
	return path
}

// effective returns cluster defaults ⊕ job layer ⊕ keys derived from the
// typed fields (name alias, walltime parts, resolved parent).
func (j *Job) effective() *params.Store {
	derived := params.New()
	derived.Set(params.KeyJobName, j.Name)
	if !j.layer.Has(params.KeyJobNameAlias) {
		derived.Set(params.KeyJobNameAlias, j.Name)
	}
	if j.Duration != nil {
		derived.Set(params.KeyDuration, *j.Duration)
		derived.Set(params.KeyHours, j.Duration.HourString())
		derived.Set(params.KeyMinutes, j.Duration.MinuteString())
		derived.Set(params.KeySeconds, j.Duration.SecondString())
		derived.Set(params.KeyWalltime, j.Duration.String())
	}

	// The resolved parent replaces every spelling of the reference.
	for _, k := range []string{params.KeyParentOK, params.KeyParentAny, params.KeyParent, params.KeyParentMode} {
		derived.Set(k, nil)
	}
	if j.Parent.IsSet() {
		derived.Set(j.Parent.Key(), j.Parent.Ref)
	}

	return j.profile.Defaults().Overlay(j.layer).Overlay(derived)
}

// Script renders the submission script without touching the filesystem.
func (j *Job) Script() (string, error) {
	if err := j.profile.Check(); err != nil {
		return "", err
	}

	eff := j.effective()
	logDir, _ := eff.String(params.KeyLogDir)

	header := eff.Strings()
	if logFile, ok := header[params.KeyLogFile]; ok {
		header[params.KeyLogFile] = qualifyLogFile(logDir, logFile)
	}

	var b strings.Builder
	b.WriteString(j.profile.Header().Render(header))

	for _, t := range j.tasks {
		d := eff.Overlay(t.Overrides)
		if _, ok := d.Get(params.KeyThreadCount); !ok {
			d.Set(params.KeyThreadCount, j.ProcessCount)
		}
		taskLogDir, _ := d.String(params.KeyLogDir)
		if logFile, ok := d.String(params.KeyLogFile); ok {
			d.Set(params.KeyLogFile, qualifyLogFile(taskLogDir, logFile))
		}
		b.WriteString(template.Substitute(t.CommandLine()+"\n", d.Strings()))
	}

	// Blocks until threaded tasks finish; a no-op otherwise.
	b.WriteString("wait\n")
	return b.String(), nil
}

// LogDirs returns the job log directory followed by the log directories
// that tasks writing to a log file set for themselves, without duplicates.
func (j *Job) LogDirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir != "" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	add(j.LogDirPath())

	eff := j.effective()
	for _, t := range j.tasks {
		if !t.LogsToFile() {
			continue
		}
		dir, ok := t.Overrides.String(params.KeyLogDir)
		if !ok || dir == "" {
			continue
		}
		dir = template.Substitute(dir, eff.Overlay(t.Overrides).Strings())
		if !filepath.IsAbs(dir) && j.RunDir != "" {
			dir = filepath.Join(j.RunDir, dir)
		}
		add(dir)
	}
	return dirs
}

// Render ensures the log directories exist and renders the script.
func (j *Job) Render() (string, error) {
	for _, dir := range j.LogDirs() {
		if err := ensureDir(dir); err != nil {
			return "", err
		}
	}
	return j.Script()
}

// qualifyLogFile prefixes a bare log file name with the log directory.
func qualifyLogFile(logDir, logFile string) string {
	if logDir == "" || logFile == "" || filepath.IsAbs(logFile) {
		return logFile
	}
	if strings.Contains(logFile, strings.TrimSuffix(logDir, "/")+"/") {
		return logFile
	}
	return filepath.Join(logDir, logFile)
}

// ensureDir creates path unless it already is a directory.
func ensureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return &PathConflictError{Path: path}
	case !os.IsNotExist(err):
		return err
	}
	utils.PrintDebug("Creating log directory %s", utils.StylePath(path))
	if err := os.MkdirAll(path, utils.PermDir); err != nil {
		// A file somewhere up the path also shows up here as ENOTDIR
		if info, statErr := os.Stat(filepath.Dir(path)); statErr == nil && !info.IsDir() {
			return &PathConflictError{Path: filepath.Dir(path)}
		}
		return fmt.Errorf("failed to create log directory %s: %w", path, err)
	}
	return nil
}
