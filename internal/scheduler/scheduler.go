// Package scheduler describes the resource managers a job script can be
// submitted to: the submit executable, the header pattern and how the job
// ID is read back from the submit output.
package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkarna/hpclauncher/internal/params"
	"github.com/tkarna/hpclauncher/internal/template"
)

// Kind names a resource manager
type Kind string

// KindUnknown is returned when a resource manager cannot be determined
const KindUnknown Kind = ""

// ParseKind maps a resource manager name (case-insensitive) to a registered Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := lookupKind(k); !ok {
		return KindUnknown, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownKind, name, Kinds())
	}
	return k, nil
}

// ProfileConfig holds the inputs of NewProfile. Empty SubmitExec and
// ScriptPattern fall back to the built-in values for Kind.
type ProfileConfig struct {
	Kind          Kind
	SubmitExec    string
	ScriptPattern string
	Defaults      *params.Store // Cluster-wide parameter layer
}

// Profile is the cluster setup shared by every job of a run. It is built
// once and only read afterwards.
type Profile struct {
	kind       Kind
	submitExec string
	header     *template.Template
	defaults   *params.Store
	parseID    func(string) (string, error)
}

// NewProfile validates cfg and builds a Profile.
func NewProfile(cfg ProfileConfig) (*Profile, error) {
	spec, ok := lookupKind(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownKind, cfg.Kind, Kinds())
	}

	submitExec := strings.TrimSpace(cfg.SubmitExec)
	if submitExec == "" {
		submitExec = spec.submitExec
	}
	pattern := cfg.ScriptPattern
	if strings.TrimSpace(pattern) == "" {
		pattern = spec.pattern
	}

	return &Profile{
		kind:       cfg.Kind,
		submitExec: submitExec,
		header:     template.Parse(pattern),
		defaults:   cfg.Defaults.Clone(),
		parseID:    spec.parseID,
	}, nil
}

// NewProfileFromParams builds a Profile from a cluster parameter layer, as
// read from a cluster YAML file. resource_manager, submit_exec and
// script_pattern configure the profile; every other key becomes a cluster
// default. Without resource_manager the kind is inferred from submit_exec.
func NewProfileFromParams(cluster *params.Store) (*Profile, error) {
	submitExec, _ := cluster.String(params.KeySubmitExec)
	pattern, _ := cluster.String(params.KeyScriptPattern)

	var kind Kind
	if name, ok := cluster.String(params.KeyResourceManager); ok {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kind = k
	} else if submitExec != "" {
		kind = DetectKind(submitExec)
	}
	if kind == KindUnknown {
		return nil, params.NewMissingParameterError("cluster", params.KeyResourceManager)
	}

	defaults := params.New()
	for _, key := range cluster.Keys() {
		switch key {
		case params.KeyResourceManager, params.KeySubmitExec, params.KeyScriptPattern:
			continue
		}
		v, _ := cluster.Get(key)
		defaults.Set(key, v)
	}

	return NewProfile(ProfileConfig{
		Kind:          kind,
		SubmitExec:    submitExec,
		ScriptPattern: pattern,
		Defaults:      defaults,
	})
}

// Check fails when p was never built with NewProfile.
func (p *Profile) Check() error {
	if p == nil || p.header == nil || p.parseID == nil {
		return ErrProfileNotInitialized
	}
	return nil
}

// Kind returns the resource manager of the profile
func (p *Profile) Kind() Kind { return p.kind }

// SubmitExec returns the submit command as configured (may include arguments)
func (p *Profile) SubmitExec() string { return p.submitExec }

// Header returns the parsed header template
func (p *Profile) Header() *template.Template { return p.header }

// Defaults returns a copy of the cluster-wide parameter layer
func (p *Profile) Defaults() *params.Store { return p.defaults.Clone() }

// WithDefaults returns a copy of p whose cluster defaults are shadowed by layer.
func (p *Profile) WithDefaults(layer *params.Store) *Profile {
	c := *p
	c.defaults = p.defaults.Overlay(layer)
	return &c
}

// SubmitCommand returns the argv used to submit scriptPath.
func (p *Profile) SubmitCommand(scriptPath string) []string {
	argv := strings.Fields(p.submitExec)
	return append(argv, scriptPath)
}

// ParseJobID extracts the job ID from the submit executable's output.
func (p *Profile) ParseJobID(output string) (string, error) {
	if err := p.Check(); err != nil {
		return "", err
	}
	return p.parseID(output)
}

// DetectKind infers the resource manager from a submit binary name.
// qsub is shared by SGE and PBS; SGE is assumed when SGE_ROOT is set.
func DetectKind(submitExec string) Kind {
	fields := strings.Fields(submitExec)
	if len(fields) == 0 {
		return KindUnknown
	}
	switch filepath.Base(fields[0]) {
	case "sbatch":
		return KindSLURM
	case "qsub":
		if _, ok := os.LookupEnv("SGE_ROOT"); ok {
			return KindSGE
		}
		return KindPBS
	case "bash", "sh":
		return KindBash
	default:
		return KindUnknown
	}
}

// IsInsideJob checks if we're currently running inside a scheduler job.
// Submitting from inside a job usually means a nested submission by mistake.
func IsInsideJob() bool {
	// Check SLURM
	if _, ok := os.LookupEnv("SLURM_JOB_ID"); ok {
		return true
	}
	// Check PBS/Torque
	if _, ok := os.LookupEnv("PBS_JOBID"); ok {
		return true
	}
	// Check SGE (JOB_ID alone is too generic)
	if _, ok := os.LookupEnv("SGE_TASK_ID"); ok {
		if _, ok := os.LookupEnv("JOB_ID"); ok {
			return true
		}
	}
	return false
}
