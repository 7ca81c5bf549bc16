package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/.hpclauncher/local_cluster.yaml", filepath.Join(home, ".hpclauncher/local_cluster.yaml")},
		{"/etc/hpclauncher", "/etc/hpclauncher"},
		{"~user/x", "~user/x"},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "batch_x.sub")
	if err := os.WriteFile(file, nil, PermScript); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "nope")) {
		t.Errorf("FileExists mismatch")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Errorf("DirExists mismatch")
	}
	if !IsScript(file) || IsScript(dir) {
		t.Errorf("IsScript mismatch")
	}
}

func TestPrintersHonorModes(t *testing.T) {
	var out, errOut bytes.Buffer
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	defer func() { Stdout, Stderr = oldOut, oldErr }()

	QuietMode = true
	PrintMessage("hidden")
	PrintWarning("shown %d", 1)
	QuietMode = false

	DebugMode = false
	PrintDebug("hidden")
	DebugMode = true
	PrintDebug("visible")
	DebugMode = false

	if out.Len() != 0 {
		t.Errorf("quiet mode should silence messages, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[HPC]") || !strings.Contains(errOut.String(), "shown 1") {
		t.Errorf("warning missing: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "visible") || strings.Contains(errOut.String(), "hidden") {
		t.Errorf("debug output mismatch: %q", errOut.String())
	}
}
