package template

import (
	"reflect"
	"strings"
	"testing"
)

const slurmPattern = `#!/bin/bash
#SBATCH -J {jobname}
#SBATCH -N {node_count}
#SBATCH -n {process_count}
#SBATCH --mail-type=end
#SBATCH -A {account}
`

func TestPlaceholders(t *testing.T) {
	tpl := Parse(slurmPattern)
	want := []string{"jobname", "node_count", "process_count", "account"}
	if got := tpl.Placeholders(); !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %v; want %v", got, want)
	}

	// Duplicates are reported once
	if got := Placeholders("{a} {b} {a}"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Placeholders() = %v; want [a b]", got)
	}
}

func TestRenderDropsLinesWithMissingPlaceholders(t *testing.T) {
	tpl := Parse(slurmPattern)
	out := tpl.Render(map[string]string{
		"jobname":       "pyjob",
		"process_count": "12",
	})

	want := "#!/bin/bash\n#SBATCH -J pyjob\n#SBATCH -n 12\n#SBATCH --mail-type=end\n"
	if out != want {
		t.Errorf("Render() =\n%q\nwant\n%q", out, want)
	}
	if strings.Contains(out, "{node_count}") || strings.Contains(out, "-N") {
		t.Errorf("node line should be elided: %q", out)
	}
}

func TestRenderKeepsPlaceholderFreeLines(t *testing.T) {
	tpl := Parse("#!/bin/bash\n#$ -cwd\n#$ -q {queue}\n#$ -V\n")
	out := tpl.Render(nil)
	want := "#!/bin/bash\n#$ -cwd\n#$ -V\n"
	if out != want {
		t.Errorf("Render(nil) = %q; want %q", out, want)
	}
}

func TestRenderDropsEmptyLines(t *testing.T) {
	tpl := Parse("a\n\n\nb {x}\n\nc")
	out := tpl.Render(map[string]string{"x": "1"})
	if out != "a\nb 1\nc\n" {
		t.Errorf("Render() = %q", out)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	tpl := Parse(slurmPattern)
	p := map[string]string{"jobname": "j", "account": "TG445"}
	first := tpl.Render(p)
	second := tpl.Render(p)
	if first != second {
		t.Errorf("renders differ:\n%q\n%q", first, second)
	}
	// The caller's map is not modified
	if len(p) != 2 {
		t.Errorf("params mutated: %v", p)
	}
}

func TestRenderResolvesNestedPlaceholders(t *testing.T) {
	tpl := Parse("#SBATCH -o {log_file}.o%j\n")
	out := tpl.Render(map[string]string{
		"log_file": "{log_dir}/run.log",
		"log_dir":  "somedir",
	})
	if out != "#SBATCH -o somedir/run.log.o%j\n" {
		t.Errorf("Render() = %q", out)
	}
}

func TestRenderDropsLineWhenNestedValueIsMissing(t *testing.T) {
	tpl := Parse("#SBATCH -J {jobname}\n#SBATCH -o {log_file}\n")
	out := tpl.Render(map[string]string{
		"jobname":  "x",
		"log_file": "{log_dir}/run.log",
	})
	if out != "#SBATCH -J x\n" {
		t.Errorf("Render() = %q", out)
	}
}

func TestRenderKeepsShellExpansionInValue(t *testing.T) {
	tpl := Parse("#SBATCH -J {jobname}\n#SBATCH -o {log_file}\n")
	out := tpl.Render(map[string]string{
		"jobname":  "x",
		"log_file": "${SCRATCH}/run.log",
	})
	if out != "#SBATCH -J x\n#SBATCH -o ${SCRATCH}/run.log\n" {
		t.Errorf("Render() = %q", out)
	}
}

func TestSubstituteRunsExactlyTwice(t *testing.T) {
	p := map[string]string{
		"a": "{b}",
		"b": "{c}",
		"c": "done",
	}
	if got := Substitute("{a}", p); got != "{c}" {
		t.Errorf("Substitute() = %q; want %q", got, "{c}")
	}
	if got := Substitute("{b}", p); got != "done" {
		t.Errorf("Substitute() = %q; want %q", got, "done")
	}
}

func TestSubstituteLeavesUnknownNames(t *testing.T) {
	got := Substitute("echo ${HOME} {x} {y}", map[string]string{"x": "1"})
	if got != "echo ${HOME} 1 {y}" {
		t.Errorf("Substitute() = %q", got)
	}
}
