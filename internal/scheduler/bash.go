package scheduler

// KindBash runs the script directly on the current host. There is no queue,
// so every run reports job ID "0".
const KindBash Kind = "bash"

const bashPattern = `#!/bin/bash
# job: {jobname}
`

// LocalJobID is the ID reported for dry runs and local bash runs.
const LocalJobID = "0"

func init() {
	registerKind(KindBash, kindSpec{
		submitExec: "bash",
		pattern:    bashPattern,
		parseID: func(string) (string, error) {
			return LocalJobID, nil
		},
	})
}
