package scheduler

import (
	"testing"

	"github.com/tkarna/hpclauncher/internal/params"
)

func TestPbsParseJobID(t *testing.T) {
	p, err := NewProfile(ProfileConfig{Kind: KindPBS})
	if err != nil {
		t.Fatalf("NewProfile failed: %v", err)
	}

	id, err := p.ParseJobID("\n1234.pbsserver\n")
	if err != nil {
		t.Fatalf("ParseJobID error: %v", err)
	}
	if id != "1234.pbsserver" {
		t.Errorf("ParseJobID = %q; want 1234.pbsserver", id)
	}

	if _, err := p.ParseJobID("  \n"); !IsParseError(err) {
		t.Errorf("ParseJobID(blank) error = %v; want *ParseError", err)
	}
}

func TestPbsHeader(t *testing.T) {
	p, err := NewProfile(ProfileConfig{Kind: KindPBS})
	if err != nil {
		t.Fatalf("NewProfile failed: %v", err)
	}
	out := p.Header().Render(map[string]string{
		params.KeyJobName:      "yamljob",
		params.KeyQueue:        "normal",
		params.KeyProcessCount: "12",
		params.KeyHours:        "12",
		params.KeyMinutes:      "30",
		params.KeySeconds:      "10",
		params.KeyLogFile:      "log/log",
		params.KeyEmail:        "SaraLee@stccmop.org",
		params.KeyAccount:      "mNNNN",
	})

	want := `#!/bin/bash
#PBS -q normal
#PBS -l mppwidth=12
#PBS -l walltime=12:30:10
#PBS -N yamljob
#PBS -o log/log.$PBS_JOBID.out
#PBS -e log/log.$PBS_JOBID.err
#PBS -M SaraLee@stccmop.org
#PBS -A mNNNN
#PBS -m ea
#PBS -V
`
	if out != want {
		t.Errorf("header =\n%s\nwant\n%s", out, want)
	}
}

func TestBashProfileReportsLocalID(t *testing.T) {
	p, err := NewProfile(ProfileConfig{Kind: KindBash})
	if err != nil {
		t.Fatalf("NewProfile failed: %v", err)
	}
	id, err := p.ParseJobID("anything the script printed")
	if err != nil || id != LocalJobID {
		t.Errorf("ParseJobID = %q, %v; want %q, nil", id, err, LocalJobID)
	}
}
