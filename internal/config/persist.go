package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tkarna/hpclauncher/internal/utils"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix prefixes every environment override, e.g. HPCLAUNCHER_VERBOSE
const EnvPrefix = "HPCLAUNCHER"

// Config keys
const (
	KeyDebug         = "debug"
	KeyClusterFile   = "cluster_file"
	KeyStrictParents = "strict_parents"
	KeyVerbose       = "verbose"
	KeyTestOnly      = "test_only"
	KeySubmitRate    = "submit_rate"
)

// InitViper initializes v with search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (bound by cobra)
// 2. Environment variables (HPCLAUNCHER_*)
// 3. User config file (~/.config/hpclauncher/config.yaml)
// 4. System config file (/etc/hpclauncher/config.yaml)
// 5. Defaults
func InitViper(v *viper.Viper) error {
	v.SetConfigName(ConfigFilename)
	v.SetConfigType(ConfigType)

	for _, dir := range SearchPaths() {
		v.AddConfigPath(dir)
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults(v)

	// Read config file (non-fatal if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	utils.PrintDebug("Loaded config file %s", utils.StylePath(v.ConfigFileUsed()))
	return nil
}

// setDefaults sets default values for all config keys
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyClusterFile, "")
	v.SetDefault(KeyStrictParents, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyTestOnly, false)
	v.SetDefault(KeySubmitRate, 0.0)
}

// SearchPaths returns the config directories in lookup order.
func SearchPaths() []string {
	var dirs []string
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userConfigDir, "hpclauncher"))
	}
	// Home directory fallback, shared with the cluster file
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".hpclauncher"))
	}
	// System-wide config (lower priority)
	dirs = append(dirs, "/etc/hpclauncher")
	// Current directory (for development)
	dirs = append(dirs, ".")
	return dirs
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".hpclauncher", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "hpclauncher", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig writes the current settings of v to path.
func SaveConfig(v *viper.Viper, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), utils.PermDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DetectSubmitExec looks for a scheduler submit binary in PATH.
// Returns (binary_path, resource_manager) or empty strings.
func DetectSubmitExec() (string, string) {
	// Try SLURM first (most common in HPC)
	if path, err := exec.LookPath("sbatch"); err == nil {
		return path, "slurm"
	}

	// qsub is shared by SGE and PBS/Torque
	if path, err := exec.LookPath("qsub"); err == nil {
		if _, exists := os.LookupEnv("SGE_ROOT"); exists {
			return path, "sge"
		}
		return path, "pbs"
	}

	return "", ""
}

// ClusterTemplate returns a starter cluster file for the detected scheduler,
// falling back to local bash execution.
func ClusterTemplate() string {
	bin, kind := DetectSubmitExec()
	if bin == "" {
		bin, kind = "bash", "bash"
	}
	return fmt.Sprintf(`# hpclauncher cluster description
resource_manager: %s
submit_exec: %s
# mpi_exec: mpirun -n {nthread}
# email: you@example.org
# account: ABC123
`, kind, bin)
}
