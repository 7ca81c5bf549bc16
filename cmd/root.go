package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkarna/hpclauncher/internal/batch"
	"github.com/tkarna/hpclauncher/internal/config"
	"github.com/tkarna/hpclauncher/internal/utils"
)

var (
	debugMode bool

	// settings merges flags, HPCLAUNCHER_* variables and the config file
	settings = viper.New()
)

var rootCmd = &cobra.Command{
	Use:           "hpclauncher",
	Short:         "hpclauncher: generate and submit batch job scripts for SLURM, SGE and PBS.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Initialize Viper (read config file, env vars)
		if err := config.InitViper(settings); err != nil {
			utils.PrintWarning("%v", err)
		}

		// Step 2: Bind the flags of the running command (highest priority)
		if err := bindFlags(cmd); err != nil {
			return err
		}

		// Step 3: Apply debug mode
		if settings.GetBool(config.KeyDebug) {
			utils.DebugMode = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("hpclauncher Version: %s", utils.StyleInfo(config.VERSION))
			if used := settings.ConfigFileUsed(); used != "" {
				utils.PrintDebug("Config file: %s", utils.StylePath(used))
			}
		}
		return nil
	},
}

// flagKeys maps flag names to config keys where the two differ
var flagKeys = map[string]string{
	"cluster":        config.KeyClusterFile,
	"test-only":      config.KeyTestOnly,
	"strict-parents": config.KeyStrictParents,
	"rate":           config.KeySubmitRate,
}

// bindFlags binds every flag of cmd that has a config key.
func bindFlags(cmd *cobra.Command) error {
	for _, name := range []string{"debug", "verbose", "cluster", "test-only", "strict-parents", "rate"} {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		key := name
		if k, ok := flagKeys[name]; ok {
			key = k
		}
		if err := settings.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. For failed submissions
		// print the scheduler output on its own lines after the error.
		var se *batch.SubmissionError
		if errors.As(err, &se) {
			utils.PrintError("%s submission failed for job %s: %v", se.Scheduler, se.JobName, se.Err)
			if out := strings.TrimSpace(se.Output); out != "" {
				fmt.Fprintln(os.Stderr, out)
			}
			os.Exit(1)
		}
		utils.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&utils.QuietMode, "quiet", "q", false, "Only print warnings and errors")
}
