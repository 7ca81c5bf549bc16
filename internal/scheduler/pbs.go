package scheduler

import (
	"strings"
)

// KindPBS is PBS Pro / Torque (qsub).
const KindPBS Kind = "pbs"

const pbsPattern = `#!/bin/bash
#PBS -q {queue}
#PBS -l nodes={node_count}
#PBS -l mppwidth={process_count}
#PBS -l walltime={hours}:{minutes}:{seconds}
#PBS -N {jobname}
#PBS -o {log_file}.$PBS_JOBID.out
#PBS -e {log_file}.$PBS_JOBID.err
#PBS -M {email}
#PBS -A {account}
#PBS -m ea
#PBS -W depend=afterany:{parent_job_any}
#PBS -W depend=afterok:{parent_job_ok}
#PBS -V
`

func init() {
	registerKind(KindPBS, kindSpec{
		submitExec: "qsub",
		pattern:    pbsPattern,
		parseID:    parsePbsJobID,
	})
}

// parsePbsJobID returns the first non-empty line, e.g. "1234.pbsserver".
func parsePbsJobID(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			return id, nil
		}
	}
	return "", NewParseError(KindPBS, output, "empty qsub output")
}
