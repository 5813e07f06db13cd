package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	// accountFlag selects the account; empty means config default or first.
	accountFlag string

	verboseFlag bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mailboard",
		Short: "Gmail triage board",
		Long: "mailboard lists Gmail messages and layers a local kanban board over them:\n" +
			"move mail between INBOX, TO_DO, IN_PROGRESS and DONE, or snooze it until later.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				switch shell {
				case "bash":
					return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
				case "zsh":
					return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
				case "fish":
					return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
				default:
					return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
				}
			}
			return runBoard(cmd, listFlags{})
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("mailboard %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	root.Flags().MarkHidden("generate-completion")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&accountFlag, "account", "", "account ID (defaults to config default or first account)")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log debug output to stderr")
	root.AddCommand(newAccountCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReadCmd())
	root.AddCommand(newBoardCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newSnoozeCmd())
	root.AddCommand(newUnsnoozeCmd())
	root.AddCommand(newSnoozedCmd())
	root.AddCommand(newArchiveCmd())
	root.AddCommand(newTrashCmd())
	root.AddCommand(newSummarizeCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
