package scheduler

import (
	"strings"
)

// KindSGE is Sun/Univa/Son of Grid Engine (qsub).
const KindSGE Kind = "sge"

// SGE has a single hold list, so both dependency modes map to -hold_jid.
const sgePattern = `#!/bin/bash
#$ -cwd
#$ -j y
#$ -S /bin/bash
#$ -N {jobname}
#$ -o {log_file}.out
#$ -e {log_file}.err
#$ -q {queue}
#$ -pe orte {process_count}
#$ -l h_rt={hours}:{minutes}:{seconds}
#$ -M {email}
#$ -m ea
#$ -A {account}
#$ -hold_jid {parent_job_any}
#$ -hold_jid {parent_job_ok}
#$ -V
`

func init() {
	registerKind(KindSGE, kindSpec{
		submitExec: "qsub",
		pattern:    sgePattern,
		parseID:    parseSgeJobID,
	})
}

// parseSgeJobID takes the third space separated token of
// `Your job 4711 ("name") has been submitted`. The ID may be non-numeric
// (array jobs print "4711.1-10:1").
func parseSgeJobID(output string) (string, error) {
	tokens := strings.Split(strings.TrimSpace(output), " ")
	if len(tokens) < 3 || tokens[2] == "" {
		return "", NewParseError(KindSGE, output, "expected at least three space separated tokens")
	}
	return tokens[2], nil
}
