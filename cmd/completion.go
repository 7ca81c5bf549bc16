package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// detectShell auto-detects the current shell from environment
func detectShell() string {
	shell := strings.ToLower(os.Getenv("SHELL"))
	switch {
	case strings.Contains(shell, "fish"):
		return "fish"
	case strings.Contains(shell, "zsh"):
		return "zsh"
	default:
		return "bash"
	}
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for hpclauncher.

If no shell is specified, it is auto-detected from $SHELL.

Bash:
  $ source <(hpclauncher completion bash)

Zsh:
  $ hpclauncher completion zsh > "${fpath[1]}/_hpclauncher"

Fish:
  $ hpclauncher completion fish | source
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}

		// Complete long options only; shorthands are restored afterwards.
		saved := stripShorthands(cmd.Root())
		defer restoreShorthands(cmd.Root(), saved)

		out := cmd.OutOrStdout()
		switch shell {
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenBashCompletionV2(out, true)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// walkFlags calls fn for every flag of every command under root.
func walkFlags(root *cobra.Command, fn func(*pflag.Flag)) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(fn)
		c.PersistentFlags().VisitAll(fn)
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
}

// stripShorthands clears flag shorthands and returns them keyed by flag name.
func stripShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)
	walkFlags(root, func(f *pflag.Flag) {
		if f.Shorthand != "" {
			saved[f.Name] = f.Shorthand
			f.Shorthand = ""
		}
	})
	return saved
}

func restoreShorthands(root *cobra.Command, saved map[string]string) {
	walkFlags(root, func(f *pflag.Flag) {
		if old, ok := saved[f.Name]; ok {
			f.Shorthand = old
		}
	})
}
