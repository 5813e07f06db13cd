package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailboard/internal/app"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local triage state with mailbox changes",
		Long: "Replays mailbox history since the last sync: overlays of deleted mail are\n" +
			"dropped and mail moved out of its mailbox is taken off the board.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			r := app.NewReconciler(s.db, s.provider, s.mail.Overlays(), s.accountID, s.logger)
			res, err := r.Sync(ctx)
			if err != nil {
				return fmt.Errorf("failed to sync: %w", err)
			}

			if jsonFlag {
				return printJSON(cmd, toJSONSync(s.accountID, res))
			}
			if res.Reset {
				fmt.Fprintf(cmd.OutOrStdout(), "Sync baseline recorded for %s at history %d.\n", s.accountID, res.HistoryID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s: %d added, %d deleted, %d moved (history %d).\n",
				s.accountID, res.Added, res.Deleted, res.Moved, res.HistoryID)
			return nil
		},
	}
}
