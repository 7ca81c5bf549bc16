package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tkarna/hpclauncher/internal/batch"
	"github.com/tkarna/hpclauncher/internal/config"
	"github.com/tkarna/hpclauncher/internal/jobfile"
	"github.com/tkarna/hpclauncher/internal/scheduler"
	"github.com/tkarna/hpclauncher/internal/utils"
)

var submitCmd = &cobra.Command{
	Use:   "submit [flags] JOBFILE...",
	Short: "Generate job scripts from a YAML job file and submit them",
	Long: `Generate one submission script per job_<name> entry of each JOBFILE and
submit the scripts in file order. JOBFILE may be a pattern such as
'runs/**/*.yaml'; matching files are read in sorted order.

A job may name an earlier job in parent_job_ok or
parent_job_any; the reference is replaced by the ID the scheduler returned.
Unknown references are passed through as scheduler IDs unless
--strict-parents is set.

The cluster file is taken from -c, then $HPCLAUNCHER_CLUSTER, then
~/.hpclauncher/local_cluster.yaml.`,
	Example: `  hpclauncher submit run.yaml                 # Submit with the default cluster file
  hpclauncher submit -c stampede.yaml run.yaml
  hpclauncher submit -t run.yaml              # Print the scripts, submit nothing
  hpclauncher submit --rate 2 'sweep/*.yaml'  # At most two sbatch calls per second`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: yamlFileCompletion,
	RunE:              runSubmit,
}

func init() {
	submitCmd.Flags().StringP("cluster", "c", "", "Cluster description file (YAML)")
	submitCmd.Flags().BoolP("test-only", "t", false, "Print the scripts instead of submitting them")
	submitCmd.Flags().BoolP("verbose", "v", false, "Print scripts, submit commands and scheduler output")
	submitCmd.Flags().Bool("strict-parents", false, "Fail on parent references to jobs not submitted earlier in this run")
	submitCmd.Flags().Float64("rate", 0, "Maximum submit calls per second (0 = unlimited)")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg := config.Load(settings)

	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	paths, err := jobfile.ExpandPaths(args)
	if err != nil {
		return err
	}
	var jobs []*batch.Job
	for _, path := range paths {
		_, fileJobs, err := jobfile.LoadJobs(path, profile)
		if err != nil {
			return err
		}
		if len(fileJobs) == 0 {
			utils.PrintWarning("No job_<name> entries in %s", utils.StylePath(path))
		}
		utils.PrintDebug("%s: %s jobs", utils.StylePath(path), utils.StyleNumber(len(fileJobs)))
		jobs = append(jobs, fileJobs...)
	}
	if len(jobs) == 0 {
		return nil
	}

	utils.PrintMessage("Submitting %s jobs to %s", utils.StyleNumber(len(jobs)), utils.StyleInfo(string(profile.Kind())))
	if cfg.TestOnly {
		utils.PrintNote("Test only: scripts are printed, nothing is submitted")
	} else if scheduler.IsInsideJob() {
		utils.PrintWarning("Submitting from inside a scheduled job")
	}

	policy := batch.PolicyPermissive
	if cfg.StrictParents {
		policy = batch.PolicyStrict
	}
	submitter, err := batch.NewSubmitter(profile,
		batch.WithDryRun(cfg.TestOnly),
		batch.WithVerbose(cfg.Verbose),
		batch.WithOutput(cmd.OutOrStdout()),
		batch.WithResolver(batch.NewResolver(policy)),
		batch.WithRateLimit(cfg.SubmitRate),
	)
	if err != nil {
		return err
	}

	// Jobs submitted before a failure stay queued, so list them either way.
	subs, err := submitter.SubmitAll(jobs)
	if !cfg.TestOnly && len(subs) > 0 {
		utils.PrintSuccess("Submitted %s of %s jobs", utils.StyleNumber(len(subs)), utils.StyleNumber(len(jobs)))
		printSubmissions(cmd.OutOrStdout(), subs)
	}
	return err
}

// loadProfile resolves the cluster file and builds the scheduler profile.
func loadProfile(cfg *config.Config) (*scheduler.Profile, error) {
	path, err := config.ResolveClusterFile(cfg.ClusterFile)
	if err != nil {
		return nil, err
	}
	profile, err := jobfile.LoadProfile(path)
	if err != nil {
		return nil, err
	}
	utils.PrintDebug("Scheduler: %s (%s)", utils.StyleInfo(string(profile.Kind())), utils.StyleCommand(profile.SubmitExec()))
	return profile, nil
}

// yamlFileCompletion completes job and cluster file names.
func yamlFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// printSubmissions lists the jobs and IDs of a finished run.
func printSubmissions(w io.Writer, subs []batch.Submission) {
	for _, s := range subs {
		fmt.Fprintf(w, "  %-24s %s\n", s.Name, utils.StyleJobID(s.ID))
	}
}
