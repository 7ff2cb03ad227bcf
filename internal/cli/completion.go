package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell
// completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	generators := map[string]func(cmd *cobra.Command) error{
		"bash": func(cmd *cobra.Command) error {
			return cmd.Root().GenBashCompletion(os.Stdout)
		},
		"zsh": func(cmd *cobra.Command) error {
			return cmd.Root().GenZshCompletion(os.Stdout)
		},
		"fish": func(cmd *cobra.Command) error {
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		},
		"powershell": func(cmd *cobra.Command) error {
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		},
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for foldline.

Load for the current shell session:

  $ source <(foldline completion bash)
  $ foldline completion fish | source
  PS> foldline completion powershell | Out-String | Invoke-Expression

Or install permanently:

  $ foldline completion bash > /etc/bash_completion.d/foldline
  $ foldline completion zsh > "${fpath[1]}/_foldline"
  $ foldline completion fish > ~/.config/fish/completions/foldline.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd)
		},
	}
}
