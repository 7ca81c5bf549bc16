package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkarna/hpclauncher/internal/config"
	"github.com/tkarna/hpclauncher/internal/params"
	"github.com/tkarna/hpclauncher/internal/scheduler"
	"github.com/tkarna/hpclauncher/internal/utils"
)

var showHeader bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Display the cluster profile",
	Long: `Display the scheduler profile built from the cluster file.

Shows the resource manager, submit command, cluster-wide default parameters
and the parameters the script header understands.`,
	Example: `  hpclauncher profile                  # Profile of the default cluster file
  hpclauncher profile -c sirius.yaml
  hpclauncher profile --header         # Also print the header pattern`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringP("cluster", "c", "", "Cluster description file (YAML)")
	profileCmd.Flags().BoolVar(&showHeader, "header", false, "Print the script header pattern")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg := config.Load(settings)
	profile, err := loadProfile(cfg)
	if err != nil {
		if bin, kind := config.DetectSubmitExec(); bin != "" {
			utils.PrintHint("Detected %s at %s; 'hpclauncher config init' writes a starter cluster file",
				utils.StyleInfo(kind), utils.StylePath(bin))
		}
		return err
	}

	w := cmd.OutOrStdout()

	// Structured output, no [HPC] prefix
	fmt.Fprintln(w, utils.StyleTitle("Scheduler Profile:"))
	fmt.Fprintf(w, "  Type:      %s\n", utils.StyleInfo(string(profile.Kind())))
	fmt.Fprintf(w, "  Submit:    %s\n", utils.StyleCommand(profile.SubmitExec()))
	if scheduler.IsInsideJob() {
		fmt.Fprintf(w, "  Status:    %s (inside job)\n", utils.StyleWarning("Nested"))
	}
	fmt.Fprintln(w)

	defaults := profile.Defaults()
	fmt.Fprintln(w, utils.StyleTitle("Cluster Defaults:"))
	if defaults.Len() == 0 {
		fmt.Fprintf(w, "  %s\n", utils.StyleInfo("none"))
	}
	for _, key := range defaults.Keys() {
		value, _ := defaults.String(key)
		fmt.Fprintf(w, "  %-16s %s\n", utils.StyleName(key), value)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, utils.StyleTitle("Header Parameters:"))
	names := profile.Header().Placeholders()
	for _, name := range names {
		note := ""
		if _, ok := defaults.Get(name); ok {
			note = " " + utils.StyleNote("(cluster default)")
		} else if isDerived(name) {
			note = " " + utils.StyleNote("(derived)")
		}
		fmt.Fprintf(w, "  %s%s\n", name, note)
	}

	if showHeader {
		fmt.Fprintln(w)
		source := "built-in"
		if builtin, ok := scheduler.DefaultPattern(profile.Kind()); !ok || builtin != profile.Header().Text() {
			source = "script_pattern"
		}
		fmt.Fprintf(w, "%s %s\n", utils.StyleTitle("Header Pattern:"), utils.StyleNote("("+source+")"))
		for _, line := range strings.Split(strings.TrimRight(profile.Header().Text(), "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	return nil
}

// isDerived reports whether a header parameter is computed from job fields.
func isDerived(name string) bool {
	switch name {
	case params.KeyHours, params.KeyMinutes, params.KeySeconds, params.KeyWalltime,
		params.KeyJobNameAlias, params.KeyParentOK, params.KeyParentAny:
		return true
	}
	return false
}
