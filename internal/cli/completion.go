package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regalloc/pkg/ra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for regalloc.

Problem arguments complete to .toml and .json files; --format and
--heuristic complete to the values each command accepts.

  $ source <(regalloc completion bash)
  $ regalloc completion zsh > "${fpath[1]}/_regalloc"
  $ regalloc completion fish > ~/.config/fish/completions/regalloc.fish
  PS> regalloc completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeProblemFile completes the single problem argument to TOML and
// JSON files.
func completeProblemFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes a comma-separated format list, offering only
// formats not already listed.
func completeFormats(valid ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndexByte(toComplete, ','); i >= 0 {
			prefix = toComplete[:i+1]
		}
		listed := strings.Split(prefix, ",")

		var out []string
		for _, f := range valid {
			if !slices.Contains(listed, f) {
				out = append(out, prefix+f)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

// registerFormatCompletion wires completeFormats to the command's --format flag.
func registerFormatCompletion(cmd *cobra.Command, valid ...string) {
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(valid...))
}

// registerHeuristicCompletion wires the spill heuristic names to --heuristic.
func registerHeuristicCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("heuristic", cobra.FixedCompletions(
		[]string{ra.HeuristicFirstNeighbor, ra.HeuristicSumNeighbors},
		cobra.ShellCompDirectiveNoFileComp,
	))
}
