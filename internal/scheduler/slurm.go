package scheduler

import (
	"strconv"
	"strings"
)

// KindSLURM is the SLURM workload manager (sbatch).
const KindSLURM Kind = "slurm"

// slurmPattern lists every directive a job may set; unset ones are elided.
const slurmPattern = `#!/bin/bash
#SBATCH -J {jobname}
#SBATCH -o {log_file}.o%j
#SBATCH -N {node_count}
#SBATCH -n {process_count}
#SBATCH -p {queue}
#SBATCH -t {hours}:{minutes}:{seconds}
#SBATCH --mail-user={email}
#SBATCH --mail-type=begin
#SBATCH --mail-type=end
#SBATCH -A {account}
#SBATCH --dependency=afterany:{parent_job_any}
#SBATCH --dependency=afterok:{parent_job_ok}
`

const slurmSubmitPrefix = "Submitted batch job "

func init() {
	registerKind(KindSLURM, kindSpec{
		submitExec: "sbatch",
		pattern:    slurmPattern,
		parseID:    parseSlurmJobID,
	})
}

// parseSlurmJobID reads the ID from a line like "Submitted batch job 1234".
// sbatch may print warnings before that line.
func parseSlurmJobID(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, slurmSubmitPrefix) {
			continue
		}
		fields := strings.Fields(line)
		last := fields[len(fields)-1]
		id, err := strconv.Atoi(last)
		if err != nil {
			return "", NewParseError(KindSLURM, output, "job ID is not an integer: "+last)
		}
		return strconv.Itoa(id), nil
	}
	return "", NewParseError(KindSLURM, output, "no line starting with \""+slurmSubmitPrefix+"\"")
}
