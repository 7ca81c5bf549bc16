package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tkarna/hpclauncher/internal/utils"
)

const VERSION = "0.4.0"

// ClusterEnv names a cluster file when no -c flag is given.
const ClusterEnv = "HPCLAUNCHER_CLUSTER"

// DefaultClusterFile is read when neither the flag nor ClusterEnv is set.
const DefaultClusterFile = "~/.hpclauncher/local_cluster.yaml"

// ErrClusterFileNotFound indicates no cluster description could be located
var ErrClusterFileNotFound = errors.New("cluster file not found")

// ClusterFileError reports the cluster file that was looked for and where
// the name came from.
type ClusterFileError struct {
	Path   string
	Source string // flag, env or default
}

func (e *ClusterFileError) Error() string {
	hint := fmt.Sprintf("pass one with -c, set %s, or create %s", ClusterEnv, DefaultClusterFile)
	return fmt.Sprintf("%v: %s (from %s); %s", ErrClusterFileNotFound, e.Path, e.Source, hint)
}

// Is allows errors.Is(err, ErrClusterFileNotFound)
func (e *ClusterFileError) Is(target error) bool {
	return target == ErrClusterFileNotFound
}

// Config holds the settings of one invocation
type Config struct {
	Debug         bool
	ClusterFile   string
	StrictParents bool
	Verbose       bool
	TestOnly      bool
	SubmitRate    float64 // submit calls per second, 0 = unlimited
}

// Load reads the settings from v after InitViper and flag binding.
func Load(v *viper.Viper) *Config {
	return &Config{
		Debug:         v.GetBool(KeyDebug),
		ClusterFile:   v.GetString(KeyClusterFile),
		StrictParents: v.GetBool(KeyStrictParents),
		Verbose:       v.GetBool(KeyVerbose),
		TestOnly:      v.GetBool(KeyTestOnly),
		SubmitRate:    v.GetFloat64(KeySubmitRate),
	}
}

// ResolveClusterFile picks the cluster file: explicit (flag or config) >
// HPCLAUNCHER_CLUSTER > ~/.hpclauncher/local_cluster.yaml. The file must exist.
func ResolveClusterFile(explicit string) (string, error) {
	path, source := explicit, "flag"
	if path == "" {
		if env := os.Getenv(ClusterEnv); env != "" {
			path, source = env, "env "+ClusterEnv
		} else {
			path, source = DefaultClusterFile, "default"
		}
	}

	path = utils.ExpandHome(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if !utils.FileExists(path) {
		return "", &ClusterFileError{Path: path, Source: source}
	}
	utils.PrintDebug("Using cluster file %s (%s)", utils.StylePath(path), source)
	return path, nil
}
