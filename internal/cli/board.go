package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailboard/internal/app"
	"github.com/lu-zhengda/mailboard/internal/domain"
)

// boardColumnWidth is the inner width of one rendered column.
const boardColumnWidth = 28

func newBoardCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show a page of mail grouped into triage columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runBoard(cmd *cobra.Command, flags listFlags) error {
	ctx := cmd.Context()
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := s.mail.Board(ctx, s.accountID, flags.options(s))
	if err != nil {
		return err
	}

	if jsonFlag {
		return printJSON(cmd, toJSONBoard(b))
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderBoard(b))
	if b.NextPageToken != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "More results: --page-token %s\n", b.NextPageToken)
	}
	return nil
}

// renderBoard lays the columns out side by side.
func renderBoard(b *app.Board) string {
	cols := make([]string, 0, len(b.Columns))
	for _, c := range b.Columns {
		cols = append(cols, renderColumn(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderColumn(c app.Column) string {
	var sb strings.Builder
	sb.WriteString(columnTitleStyle.Render(fmt.Sprintf("%s (%d)", c.Status, len(c.Emails))))
	sb.WriteString("\n")

	if len(c.Emails) == 0 {
		sb.WriteString(mutedTextStyle.Render("(empty)"))
	}
	for i, e := range c.Emails {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(renderCard(e))
	}
	return columnStyle.Width(boardColumnWidth).Render(sb.String())
}

func renderCard(e domain.TriagedEmail) string {
	subject := truncate(e.Subject, boardColumnWidth)
	if subject == "" {
		subject = "(no subject)"
	}
	switch {
	case e.Status == domain.StatusDone:
		subject = doneStyle.Render(subject)
	case !e.IsRead:
		subject = unreadStyle.Render(subject)
	}

	lines := []string{
		subject,
		mutedTextStyle.Render(truncate(e.Sender(), boardColumnWidth)),
		mutedTextStyle.Render(e.ID),
	}
	if !e.SnoozedUntil.IsZero() {
		lines = append(lines, snoozeStyle.Render("until "+e.SnoozedUntil.Local().Format("Jan 02 15:04")))
	}
	return strings.Join(lines, "\n")
}
