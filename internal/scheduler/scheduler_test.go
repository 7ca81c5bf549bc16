package scheduler

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tkarna/hpclauncher/internal/params"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"slurm", KindSLURM},
		{"SLURM", KindSLURM},
		{" sge ", KindSGE},
		{"PBS", KindPBS},
		{"bash", KindBash},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if err != nil {
			t.Errorf("ParseKind(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q; want %q", tt.input, got, tt.want)
		}
	}

	if _, err := ParseKind("loadleveler"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(loadleveler) error = %v; want ErrUnknownKind", err)
	}
}

func TestKindsAreRegistered(t *testing.T) {
	want := []Kind{KindBash, KindPBS, KindSGE, KindSLURM}
	if got := Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v; want %v", got, want)
	}
}

func TestNewProfileDefaults(t *testing.T) {
	p, err := NewProfile(ProfileConfig{Kind: KindSLURM})
	if err != nil {
		t.Fatalf("NewProfile failed: %v", err)
	}
	if p.SubmitExec() != "sbatch" {
		t.Errorf("SubmitExec() = %q; want sbatch", p.SubmitExec())
	}
	if p.Header().Text() != slurmPattern {
		t.Errorf("Header() does not use the built-in SLURM pattern")
	}
	if p.Defaults().Len() != 0 {
		t.Errorf("Defaults() should be empty")
	}
}

func TestNewProfileUnknownKind(t *testing.T) {
	_, err := NewProfile(ProfileConfig{Kind: "condor"})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("NewProfile error = %v; want ErrUnknownKind", err)
	}
}

func TestNewProfileFromParams(t *testing.T) {
	cluster := params.New().
		Set(params.KeyResourceManager, "slurm").
		Set(params.KeySubmitExec, "/opt/slurm/bin/sbatch --parsable-off").
		Set(params.KeyMPIExec, "mpiexec -n {nthread}").
		Set(params.KeyEmail, "a@b.com").
		Set(params.KeyAccount, "TG445")

	p, err := NewProfileFromParams(cluster)
	if err != nil {
		t.Fatalf("NewProfileFromParams failed: %v", err)
	}
	if p.Kind() != KindSLURM {
		t.Errorf("Kind() = %q; want slurm", p.Kind())
	}
	wantKeys := []string{params.KeyMPIExec, params.KeyEmail, params.KeyAccount}
	if got := p.Defaults().Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Defaults().Keys() = %v; want %v", got, wantKeys)
	}
	wantArgv := []string{"/opt/slurm/bin/sbatch", "--parsable-off", "batch_x.sub"}
	if got := p.SubmitCommand("batch_x.sub"); !reflect.DeepEqual(got, wantArgv) {
		t.Errorf("SubmitCommand() = %v; want %v", got, wantArgv)
	}
}

func TestNewProfileFromParamsCustomPattern(t *testing.T) {
	cluster := params.New().
		Set(params.KeyResourceManager, "pbs").
		Set(params.KeyScriptPattern, "#!/bin/sh\n#PBS -N {jobname}\n")

	p, err := NewProfileFromParams(cluster)
	if err != nil {
		t.Fatalf("NewProfileFromParams failed: %v", err)
	}
	if got := p.Header().Placeholders(); !reflect.DeepEqual(got, []string{"jobname"}) {
		t.Errorf("Placeholders() = %v; want [jobname]", got)
	}
	if p.Defaults().Has(params.KeyScriptPattern) {
		t.Errorf("script_pattern must not leak into the defaults layer")
	}
}

func TestNewProfileFromParamsInfersKind(t *testing.T) {
	t.Setenv("SGE_ROOT", "/opt/sge")
	p, err := NewProfileFromParams(params.New().Set(params.KeySubmitExec, "qsub"))
	if err != nil {
		t.Fatalf("NewProfileFromParams failed: %v", err)
	}
	if p.Kind() != KindSGE {
		t.Errorf("Kind() = %q; want sge", p.Kind())
	}
}

func TestNewProfileFromParamsMissingKind(t *testing.T) {
	_, err := NewProfileFromParams(params.New().Set(params.KeyEmail, "a@b.com"))
	if !params.IsMissingParameter(err) {
		t.Fatalf("error = %v; want MissingParameterError", err)
	}
	if !strings.Contains(err.Error(), params.KeyResourceManager) {
		t.Errorf("error %q should name %s", err, params.KeyResourceManager)
	}
}

func TestZeroProfileFailsLoudly(t *testing.T) {
	var p *Profile
	if err := p.Check(); !errors.Is(err, ErrProfileNotInitialized) {
		t.Errorf("nil Check() = %v; want ErrProfileNotInitialized", err)
	}
	var zero Profile
	if _, err := zero.ParseJobID("Submitted batch job 1"); !errors.Is(err, ErrProfileNotInitialized) {
		t.Errorf("zero ParseJobID() error = %v; want ErrProfileNotInitialized", err)
	}
}

func TestDetectKind(t *testing.T) {
	t.Setenv("SGE_ROOT", "")
	tests := []struct {
		bin  string
		want Kind
	}{
		{"sbatch", KindSLURM},
		{"/usr/bin/sbatch --hold", KindSLURM},
		{"qsub", KindSGE}, // SGE_ROOT is set (even if empty)
		{"bash", KindBash},
		{"condor_submit", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.bin); got != tt.want {
			t.Errorf("DetectKind(%q) = %q; want %q", tt.bin, got, tt.want)
		}
	}
}

func TestIsInsideJob(t *testing.T) {
	for _, key := range []string{"SLURM_JOB_ID", "PBS_JOBID", "SGE_TASK_ID", "JOB_ID"} {
		t.Setenv(key, "")
	}
	t.Setenv("SLURM_JOB_ID", "4242")
	if !IsInsideJob() {
		t.Errorf("IsInsideJob() = false with SLURM_JOB_ID set")
	}
}
