// Package jobfile reads cluster and job descriptions from YAML.
//
// A job file holds global parameters plus job_<name> mappings. Each job
// mapping holds job parameters plus task_<name> mappings with a command.
// Key order is preserved so jobs are submitted in the order they are written.
package jobfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tkarna/hpclauncher/internal/batch"
	"github.com/tkarna/hpclauncher/internal/params"
	"github.com/tkarna/hpclauncher/internal/scheduler"
)

const (
	JobPrefix  = "job_"
	TaskPrefix = "task_"

	// timeKey is the YAML spelling of the duration parameter
	timeKey = "time"
)

// TaskSpec is one task_<name> entry of a job.
type TaskSpec struct {
	Name    string
	Command string
	Params  *params.Store
}

// JobSpec is one job_<name> entry.
type JobSpec struct {
	Name   string
	Params *params.Store
	Tasks  []TaskSpec
}

// Document is a parsed job file.
type Document struct {
	Globals *params.Store
	Jobs    []JobSpec
}

// Parse reads a job file from data.
func Parse(data []byte) (*Document, error) {
	root, err := parseMapping(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Globals: params.New()}
	err = eachPair(root, func(key string, value *yaml.Node) error {
		if name, ok := strings.CutPrefix(key, JobPrefix); ok {
			job, err := parseJob(name, value)
			if err != nil {
				return err
			}
			doc.Jobs = append(doc.Jobs, job)
			return nil
		}
		return setParam(doc.Globals, key, value)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads and parses the job file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Build creates the jobs of doc. Globals shadow the profile defaults.
func (d *Document) Build(profile *scheduler.Profile) ([]*batch.Job, error) {
	if err := profile.Check(); err != nil {
		return nil, err
	}
	profile = profile.WithDefaults(d.Globals)

	jobs := make([]*batch.Job, 0, len(d.Jobs))
	for _, spec := range d.Jobs {
		job, err := batch.NewJob(profile, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", spec.Name, err)
		}
		for _, ts := range spec.Tasks {
			task, err := batch.NewTask(ts.Command, ts.Params)
			if err != nil {
				return nil, fmt.Errorf("job %s, task %s: %w", spec.Name, ts.Name, err)
			}
			job.AddTask(task, false)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// LoadJobs reads a job file and builds its jobs for profile.
func LoadJobs(path string, profile *scheduler.Profile) (*params.Store, []*batch.Job, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	jobs, err := doc.Build(profile)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Globals, jobs, nil
}

// ParseCluster reads a cluster description: resource_manager, submit_exec,
// an optional script_pattern and any default parameters.
func ParseCluster(data []byte) (*params.Store, error) {
	root, err := parseMapping(data)
	if err != nil {
		return nil, err
	}
	cluster := params.New()
	if err := eachPair(root, func(key string, value *yaml.Node) error {
		return setParam(cluster, key, value)
	}); err != nil {
		return nil, err
	}
	return cluster, nil
}

// LoadCluster reads the cluster file at path.
func LoadCluster(path string) (*params.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cluster file: %w", err)
	}
	cluster, err := ParseCluster(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cluster, nil
}

// LoadProfile reads the cluster file at path and builds its profile.
func LoadProfile(path string) (*scheduler.Profile, error) {
	cluster, err := LoadCluster(path)
	if err != nil {
		return nil, err
	}
	profile, err := scheduler.NewProfileFromParams(cluster)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profile, nil
}

func parseJob(name string, node *yaml.Node) (JobSpec, error) {
	if name == "" {
		return JobSpec{}, fmt.Errorf("line %d: job key %q has no name", node.Line, JobPrefix)
	}
	if node.Kind != yaml.MappingNode {
		return JobSpec{}, fmt.Errorf("line %d: job %s must be a mapping", node.Line, name)
	}

	spec := JobSpec{Name: name, Params: params.New()}
	err := eachPair(node, func(key string, value *yaml.Node) error {
		if taskName, ok := strings.CutPrefix(key, TaskPrefix); ok {
			task, err := parseTask(name, taskName, value)
			if err != nil {
				return err
			}
			spec.Tasks = append(spec.Tasks, task)
			return nil
		}
		return setParam(spec.Params, key, value)
	})
	if err != nil {
		return JobSpec{}, err
	}

	if !spec.Params.Has(params.KeyJobName) {
		if alias, ok := spec.Params.Get(params.KeyJobNameAlias); ok {
			spec.Params.Set(params.KeyJobName, alias)
		} else {
			spec.Params.Set(params.KeyJobName, name)
		}
	}
	return spec, nil
}

func parseTask(jobName, name string, node *yaml.Node) (TaskSpec, error) {
	if node.Kind != yaml.MappingNode {
		return TaskSpec{}, fmt.Errorf("line %d: task %s of job %s must be a mapping", node.Line, name, jobName)
	}

	spec := TaskSpec{Name: name, Params: params.New()}
	err := eachPair(node, func(key string, value *yaml.Node) error {
		if key == params.KeyCommand {
			var cmd string
			if err := value.Decode(&cmd); err != nil {
				return fmt.Errorf("line %d: command of task %s: %w", value.Line, name, err)
			}
			spec.Command = cmd
			return nil
		}
		return setParam(spec.Params, key, value)
	})
	if err != nil {
		return TaskSpec{}, err
	}
	if strings.TrimSpace(spec.Command) == "" {
		me := params.NewMissingParameterError("task", params.KeyCommand)
		me.Reason = "task " + name + " of job " + jobName
		return TaskSpec{}, me
	}
	return spec, nil
}

func parseMapping(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind == 0 {
		// empty document
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping", root.Line)
	}
	return root, nil
}

// eachPair walks the keys of a mapping node in document order.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		if seen[k.Value] {
			return fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		if err := fn(k.Value, v); err != nil {
			return err
		}
	}
	return nil
}

// setParam decodes value into s under key; "time" becomes a Duration.
func setParam(s *params.Store, key string, value *yaml.Node) error {
	var v any
	if err := value.Decode(&v); err != nil {
		return fmt.Errorf("line %d: %s: %w", value.Line, key, err)
	}
	if key == timeKey || key == params.KeyDuration {
		d, err := params.DurationFromValue(v)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", value.Line, key, err)
		}
		s.Set(params.KeyDuration, d)
		return nil
	}
	s.Set(key, v)
	return nil
}
