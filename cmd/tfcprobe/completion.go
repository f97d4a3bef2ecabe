package tfcprobe

import (
	"fmt"

	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/spf13/cobra"
)

// fixedValues completes a flag from a closed set of values.
func fixedValues(values ...string) cobra.CompletionFunc {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}

var (
	engineValues    = fixedValues(regex.NamePCRE, regex.NamePOSIX)
	operationValues = fixedValues(string(types.OpEquals), string(types.OpPatternMatch))
	directionValues = fixedValues(string(types.DirectionNone), string(types.DirectionUp), string(types.DirectionDown))
	followValues    = fixedValues(string(types.FollowSymlinksAndDirs), string(types.FollowDirsOnly), string(types.FollowSymlinksOnly))
	scopeValues     = fixedValues(string(types.ScopeAll), string(types.ScopeLocal))
)

func init() {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
tfcprobe completion bash > /etc/bash_completion.d/tfcprobe

# Zsh
tfcprobe completion zsh > "${fpath[1]}/_tfcprobe"

# Fish
tfcprobe completion fish > ~/.config/fish/completions/tfcprobe.fish`,
	}
	rootCmd.AddCommand(cmd)
}
