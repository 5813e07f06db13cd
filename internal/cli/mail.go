package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailboard/internal/app"
	"github.com/lu-zhengda/mailboard/internal/domain"
)

// listFlags are shared by list and board.
type listFlags struct {
	mailbox   string
	limit     int
	pageToken string
	query     string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mailbox, "mailbox", "", "mailbox label ID (defaults to config, usually INBOX)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "page size (defaults to config)")
	cmd.Flags().StringVar(&f.pageToken, "page-token", "", "continue from a previous page")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "provider search query")
}

func (f listFlags) options(s *session) app.ListOptions {
	opts := app.ListOptions{
		Mailbox:   f.mailbox,
		PageSize:  f.limit,
		PageToken: f.pageToken,
		Query:     f.query,
	}
	if opts.Mailbox == "" {
		opts.Mailbox = s.cfg.List.Mailbox
	}
	if opts.PageSize <= 0 {
		opts.PageSize = s.cfg.List.PageSize
	}
	return opts
}

func newListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List emails with their triage status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			page, err := s.mail.ListEmails(ctx, s.accountID, flags.options(s))
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, toJSONPage(page))
			}

			if len(page.Emails) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No emails found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tDATE\tFROM\tSUBJECT")
			for _, e := range page.Emails {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.ID,
					e.Status,
					shortDate(e.Date),
					truncate(e.Sender(), 30),
					truncate(e.Subject, 60),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if page.NextPageToken != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMore results: --page-token %s\n", page.NextPageToken)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <email-id>",
		Short: "Show one email with bodies and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.mail.GetEmail(ctx, s.accountID, args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, toJSONEmailDetail(d))
			}

			fromLine := d.From
			if d.FromName != "" {
				fromLine = d.FromName + " <" + d.From + ">"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\n", d.Subject)
			fmt.Fprintf(cmd.OutOrStdout(), "From:    %s\n", fromLine)
			fmt.Fprintf(cmd.OutOrStdout(), "To:      %s\n", strings.Join(d.To, ", "))
			if len(d.CC) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Cc:      %s\n", strings.Join(d.CC, ", "))
			}
			if len(d.BCC) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Bcc:     %s\n", strings.Join(d.BCC, ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date:    %s\n", d.Date)
			status := string(d.Status)
			if !d.SnoozedUntil.IsZero() {
				status += " until " + d.SnoozedUntil.Local().Format(time.DateTime)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status:  %s\n", status)
			fmt.Fprintln(cmd.OutOrStdout())

			body := d.BodyText
			if body == "" {
				body = d.BodyHTML
			}
			if body == "" {
				body = d.Snippet
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)

			if len(d.Attachments) > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ATTACHMENT\tTYPE\tSIZE")
				for _, a := range d.Attachments {
					fmt.Fprintf(w, "%s\t%s\t%d\n", a.FileName, a.MIMEType, a.Size)
				}
				return w.Flush()
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <email-id> <status>",
		Short: "Move an email to a board column (inbox, to-do, in-progress, done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if status == domain.StatusSnoozed {
				return errors.New("use 'mailboard snooze' to snooze an email")
			}

			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.mail.SetStatus(ctx, s.accountID, args[0], status); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "status", ID: args[0], Status: string(status)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], status)
			return nil
		},
	}
}

func newSnoozeCmd() *cobra.Command {
	var (
		forFlag   string
		untilFlag string
	)

	cmd := &cobra.Command{
		Use:   "snooze <email-id>",
		Short: "Hide an email until a deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			def, err := s.cfg.SnoozeDefault()
			if err != nil {
				return err
			}
			until, err := snoozeDeadline(time.Now(), forFlag, untilFlag, def)
			if err != nil {
				return err
			}

			if err := s.mail.Snooze(ctx, s.accountID, args[0], until); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{
					OK:           true,
					Action:       "snooze",
					ID:           args[0],
					Status:       string(domain.StatusSnoozed),
					SnoozedUntil: until.UTC().Format(time.RFC3339),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s snoozed until %s\n", args[0], until.Local().Format(time.DateTime))
			return nil
		},
	}

	cmd.Flags().StringVar(&forFlag, "for", "", "snooze duration, e.g. 90m, 4h, 3d")
	cmd.Flags().StringVar(&untilFlag, "until", "", "snooze deadline, RFC 3339 or \"2006-01-02 15:04\" local time")
	cmd.MarkFlagsMutuallyExclusive("for", "until")
	return cmd
}

func newUnsnoozeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsnooze <email-id>",
		Short: "Wake a snoozed email now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			status, err := s.mail.Unsnooze(ctx, s.accountID, args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "unsnooze", ID: args[0], Status: string(status)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], status)
			return nil
		},
	}
}

func newSnoozedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snoozed",
		Short: "List snoozed emails by deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			recs, err := s.mail.Snoozed(ctx, s.accountID)
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, toJSONSnoozed(recs))
			}

			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing snoozed.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID	MAILBOX	UNTIL	RETURNS TO")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.EmailID,
					r.MailboxID,
					r.SnoozedUntil.Local().Format(time.DateTime),
					r.WakeStatus(),
				)
			}
			return w.Flush()
		},
	}
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <email-id>",
		Short: "Archive an email (remove from inbox)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.mail.Archive(ctx, s.accountID, args[0]); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "archive", ID: args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", args[0])
			return nil
		},
	}
}

func newTrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trash <email-id>",
		Short: "Move an email to trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.mail.Trash(ctx, s.accountID, args[0]); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "trash", ID: args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trashed %s\n", args[0])
			return nil
		},
	}
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <email-id>",
		Short: "Summarize an email with Claude",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := s.mail.Summarize(ctx, s.accountID, args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonSummary{ID: args[0], Summary: summary})
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

// snoozeDeadline resolves --for / --until into an absolute deadline. With
// neither set the configured default duration applies.
func snoozeDeadline(now time.Time, forFlag, untilFlag string, def time.Duration) (time.Time, error) {
	switch {
	case untilFlag != "":
		if t, err := time.Parse(time.RFC3339, untilFlag); err == nil {
			return t, nil
		}
		t, err := time.ParseInLocation("2006-01-02 15:04", untilFlag, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --until %q: want RFC 3339 or \"2006-01-02 15:04\"", untilFlag)
		}
		return t, nil
	case forFlag != "":
		d, err := parseSnoozeDuration(forFlag)
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(d), nil
	default:
		return now.Add(def), nil
	}
}

// parseSnoozeDuration accepts Go durations plus a whole-day "Nd" form.
func parseSnoozeDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid --for %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid --for %q", s)
	}
	return d, nil
}

// shortDate renders an ISO-8601 date as local "Jan 02 15:04"; unparsable or
// empty dates pass through.
func shortDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("Jan 02 15:04")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
