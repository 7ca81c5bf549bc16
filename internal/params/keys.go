package params

// Reserved parameter keys understood by the job engine and the default headers.
const (
	KeyJobName      = "jobname"
	KeyJobNameAlias = "job_name"
	KeyQueue        = "queue"
	KeyProcessCount = "process_count"
	KeyNodeCount    = "node_count"
	KeyThreadCount  = "nthread"
	KeyDuration     = "duration"
	KeyHours        = "hours"
	KeyMinutes      = "minutes"
	KeySeconds      = "seconds"
	KeyWalltime     = "walltime"
	KeyLogDir       = "log_dir"
	KeyLogFile      = "log_file"
	KeyRunDir       = "run_dir"
	KeyParentOK     = "parent_job_ok"
	KeyParentAny    = "parent_job_any"
	KeyParent       = "parent_job"
	KeyParentMode   = "parent_mode"
	KeyEmail        = "email"
	KeyAccount      = "account"
	KeyMPIExec      = "mpi_exec"

	// Task-level keys
	KeyCommand      = "command"
	KeyRedirectMode = "redirect_mode"
	KeyThreaded     = "threaded"

	// Cluster profile keys
	KeyResourceManager = "resource_manager"
	KeySubmitExec      = "submit_exec"
	KeyScriptPattern   = "script_pattern"
)
