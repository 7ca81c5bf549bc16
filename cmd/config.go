package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkarna/hpclauncher/internal/config"
	"github.com/tkarna/hpclauncher/internal/utils"
)

var showPath bool

// configKeys is the list of known configuration keys
var configKeys = []string{
	config.KeyClusterFile,
	config.KeyStrictParents,
	config.KeyVerbose,
	config.KeyTestOnly,
	config.KeySubmitRate,
	config.KeyDebug,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hpclauncher configuration",
	Long: `Manage hpclauncher configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (HPCLAUNCHER_*)
  3. User config file (~/.config/hpclauncher/config.yaml)
  4. System config file (/etc/hpclauncher/config.yaml)
  5. Defaults

The cluster file is resolved separately: -c, cluster_file, then
$HPCLAUNCHER_CLUSTER, then ~/.hpclauncher/local_cluster.yaml.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if showPath {
			configPath, err := config.GetUserConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			fmt.Fprintln(w, configPath)
			return nil
		}

		// Show config file search paths
		fmt.Fprintln(w, utils.StyleTitle("Config File Search Paths:"))
		used := settings.ConfigFileUsed()
		for i, dir := range config.SearchPaths() {
			path := filepath.Join(dir, config.ConfigFilename+"."+config.ConfigType)
			status := ""
			if abs, err := filepath.Abs(path); err == nil && abs == used {
				status = " " + utils.StyleSuccess("← in use")
			} else if utils.FileExists(path) {
				status = " " + utils.StyleInfo("(exists)")
			}
			fmt.Fprintf(w, "  %d. %s%s\n", i+1, path, status)
		}
		if used == "" {
			fmt.Fprintf(w, "  %s (use 'hpclauncher config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, utils.StyleTitle("Current Configuration:"))
		for _, key := range configKeys {
			fmt.Fprintf(w, "  %-16s %v\n", key+":", settings.Get(key))
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, utils.StyleTitle("Cluster File:"))
		if path, err := config.ResolveClusterFile(settings.GetString(config.KeyClusterFile)); err == nil {
			fmt.Fprintf(w, "  %s\n", utils.StylePath(path))
		} else {
			fmt.Fprintf(w, "  %s\n", utils.StyleWarning(err.Error()))
		}
		fmt.Fprintln(w)

		// Show environment variable overrides
		fmt.Fprintln(w, utils.StyleTitle("Environment Variable Overrides:"))
		envVars := []string{config.ClusterEnv}
		for _, key := range configKeys {
			envVars = append(envVars, config.EnvPrefix+"_"+strings.ToUpper(key))
		}
		hasEnvOverrides := false
		for _, envVar := range envVars {
			if val := os.Getenv(envVar); val != "" {
				fmt.Fprintf(w, "  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Fprintf(w, "  %s\n", utils.StyleInfo("none"))
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and a starter cluster file",
	Long: `Create ~/.config/hpclauncher/config.yaml with default values and, when
missing, ~/.hpclauncher/local_cluster.yaml for the scheduler found in PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		if err := config.SaveConfig(settings, configPath); err != nil {
			return err
		}
		utils.PrintSuccess("Config saved to %s", utils.StylePath(configPath))

		clusterPath := utils.ExpandHome(config.DefaultClusterFile)
		if utils.FileExists(clusterPath) {
			utils.PrintNote("Cluster file %s already exists", utils.StylePath(clusterPath))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(clusterPath), utils.PermDir); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(clusterPath), err)
		}
		if err := os.WriteFile(clusterPath, []byte(config.ClusterTemplate()), utils.PermFile); err != nil {
			return fmt.Errorf("failed to write cluster file: %w", err)
		}
		utils.PrintSuccess("Cluster file written to %s", utils.StylePath(clusterPath))
		utils.PrintHint("Edit it to add mpi_exec, email and account defaults")
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVarP(&showPath, "path", "p", false, "Only print the user config file path")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
