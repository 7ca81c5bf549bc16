package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tkarna/hpclauncher/internal/scheduler"
	"github.com/tkarna/hpclauncher/internal/utils"
)

// DryRunJobID is returned for every job when nothing is submitted.
const DryRunJobID = "0"

// Runner runs argv with dir as working directory and returns the combined
// stdout and stderr.
type Runner func(dir string, argv []string) ([]byte, error)

// ExecRunner is the default Runner, backed by os/exec.
func ExecRunner(dir string, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty submit command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Submission is the outcome of one submitted job
type Submission struct {
	Name string
	ID   string
}

// Submitter writes job scripts and hands them to the resource manager.
type Submitter struct {
	profile  *scheduler.Profile
	resolver *Resolver
	runner   Runner
	out      io.Writer
	dryRun   bool
	verbose  bool

	// Rate limiter (nil if unlimited)
	limiter *rate.Limiter
}

// Option configures a Submitter
type Option func(*Submitter)

// WithDryRun prints scripts instead of writing and submitting them.
func WithDryRun(dryRun bool) Option {
	return func(s *Submitter) { s.dryRun = dryRun }
}

// WithVerbose prints the script, the submit command and the scheduler output.
func WithVerbose(verbose bool) Option {
	return func(s *Submitter) { s.verbose = verbose }
}

// WithOutput sets where scripts and verbose output go (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(s *Submitter) { s.out = w }
}

// WithRunner replaces the process runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(s *Submitter) { s.runner = r }
}

// WithResolver shares a resolver, e.g. one with PolicyStrict.
func WithResolver(r *Resolver) Option {
	return func(s *Submitter) { s.resolver = r }
}

// WithRateLimit allows at most perSecond submit calls per second. Some sites
// reject bursts of sbatch calls. Zero or less means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(s *Submitter) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewSubmitter creates a Submitter for profile.
func NewSubmitter(profile *scheduler.Profile, opts ...Option) (*Submitter, error) {
	if err := profile.Check(); err != nil {
		return nil, err
	}
	s := &Submitter{
		profile: profile,
		runner:  ExecRunner,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = NewResolver(PolicyPermissive)
	}
	return s, nil
}

// Resolver returns the resolver holding the IDs submitted so far
func (s *Submitter) Resolver() *Resolver { return s.resolver }

// Submit submits one job and returns its scheduler ID. The ID is recorded
// so later jobs can name this job as their parent.
func (s *Submitter) Submit(job *Job) (string, error) {
	resolved, err := s.resolver.Resolve(job)
	if err != nil {
		return "", err
	}
	if resolved.Parent.IsSet() && resolved.Parent.Ref != job.Parent.Ref {
		utils.PrintDebug("Job %s depends on %s (%s)", job.Name, job.Parent.Ref, utils.StyleNumber(resolved.Parent.Ref))
	}

	if s.dryRun {
		script, err := resolved.Script()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(s.out, "# %s\n%s\n", resolved.ScriptName(), script)
		s.resolver.Record(job.Name, DryRunJobID)
		return DryRunJobID, nil
	}

	dir, err := runDir(resolved)
	if err != nil {
		return "", err
	}
	resolved.RunDir = dir

	script, err := resolved.Render()
	if err != nil {
		return "", err
	}
	scriptPath := filepath.Join(dir, resolved.ScriptName())
	if err := os.WriteFile(scriptPath, []byte(script), utils.PermScript); err != nil {
		return "", fmt.Errorf("failed to write job script: %w", err)
	}

	argv := s.profile.SubmitCommand(resolved.ScriptName())
	if s.verbose {
		fmt.Fprint(s.out, script)
		fmt.Fprintf(s.out, "cd %s\n%s\n", dir, strings.Join(argv, " "))
	}
	utils.PrintDebug("Submitting %s with %s", utils.StylePath(scriptPath), utils.StyleCommand(strings.Join(argv, " ")))

	if s.limiter != nil {
		if err := s.limiter.Wait(context.Background()); err != nil {
			return "", err
		}
	}
	output, err := s.runner(dir, argv)
	if s.verbose && len(output) > 0 {
		fmt.Fprint(s.out, string(output))
	}
	if err != nil {
		return "", NewSubmissionError(string(s.profile.Kind()), job.Name, argv, string(output), err)
	}

	if s.profile.Kind() == scheduler.KindBash {
		if err := writeLocalLog(resolved, output); err != nil {
			return "", err
		}
	}

	id, err := s.profile.ParseJobID(string(output))
	if err != nil {
		return "", err
	}
	s.resolver.Record(job.Name, id)
	return id, nil
}

// SubmitAll submits jobs in order and stops at the first failure. The
// submissions made before the failure are returned with the error.
func (s *Submitter) SubmitAll(jobs []*Job) ([]Submission, error) {
	subs := make([]Submission, 0, len(jobs))
	for _, job := range jobs {
		id, err := s.Submit(job)
		if err != nil {
			return subs, err
		}
		subs = append(subs, Submission{Name: job.Name, ID: id})
	}
	return subs, nil
}

// runDir returns the absolute run directory, which must already exist.
func runDir(job *Job) (string, error) {
	dir := job.RunDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if !utils.DirExists(abs) {
		return "", &DirectoryNotFoundError{JobName: job.Name, Path: dir}
	}
	return abs, nil
}

// writeLocalLog stores the output of a job run by bash in the job log file.
func writeLocalLog(job *Job, output []byte) error {
	path := job.LogFilePath()
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, output, utils.PermFile); err != nil {
		return fmt.Errorf("failed to write job log: %w", err)
	}
	return nil
}
