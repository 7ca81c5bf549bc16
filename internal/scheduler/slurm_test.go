package scheduler

import (
	"errors"
	"strings"
	"testing"

	"github.com/tkarna/hpclauncher/internal/params"
)

// newTestSlurmProfile creates a SLURM profile for testing without requiring sbatch
func newTestSlurmProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := NewProfile(ProfileConfig{Kind: KindSLURM, SubmitExec: "/usr/bin/sbatch"})
	if err != nil {
		t.Fatalf("NewProfile failed: %v", err)
	}
	return p
}

func TestSlurmParseJobID(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantID  string
		wantErr bool
	}{
		{"plain", "Submitted batch job 4242\n", "4242", false},
		{"warnings first", "sbatch: warning: no account\nSubmitted batch job 17\n", "17", false},
		{"crlf", "Submitted batch job 99\r\n", "99", false},
		{"missing line", "sbatch: error: invalid partition\n", "", true},
		{"non-numeric", "Submitted batch job abc\n", "", true},
		{"indented", "  Submitted batch job 5\n", "", true},
		{"empty", "", "", true},
	}

	p := newTestSlurmProfile(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := p.ParseJobID(tt.output)
			if tt.wantErr {
				if !errors.Is(err, ErrJobIDParseFailed) {
					t.Fatalf("ParseJobID(%q) error = %v; want ErrJobIDParseFailed", tt.output, err)
				}
				if !IsParseError(err) {
					t.Errorf("error should be a *ParseError")
				}
				if !strings.Contains(err.Error(), tt.output) {
					t.Errorf("error %q should carry the raw output", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJobID(%q) error: %v", tt.output, err)
			}
			if id != tt.wantID {
				t.Errorf("ParseJobID(%q) = %q; want %q", tt.output, id, tt.wantID)
			}
		})
	}
}

func TestSlurmHeader(t *testing.T) {
	p := newTestSlurmProfile(t)
	out := p.Header().Render(map[string]string{
		params.KeyJobName:      "pyjob",
		params.KeyLogFile:      "somedir/log",
		params.KeyNodeCount:    "2",
		params.KeyProcessCount: "12",
		params.KeyQueue:        "normal",
		params.KeyHours:        "12",
		params.KeyMinutes:      "30",
		params.KeySeconds:      "10",
		params.KeyParentOK:     "1001",
	})

	want := `#!/bin/bash
#SBATCH -J pyjob
#SBATCH -o somedir/log.o%j
#SBATCH -N 2
#SBATCH -n 12
#SBATCH -p normal
#SBATCH -t 12:30:10
#SBATCH --mail-type=begin
#SBATCH --mail-type=end
#SBATCH --dependency=afterok:1001
`
	if out != want {
		t.Errorf("header =\n%s\nwant\n%s", out, want)
	}
}
