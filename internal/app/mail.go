// Package app wires providers, normalization and triage state into the
// operations the CLI exposes.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lu-zhengda/mailboard/internal/ai"
	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/normalize"
	"github.com/lu-zhengda/mailboard/internal/provider"
	"github.com/lu-zhengda/mailboard/internal/store"
	"github.com/lu-zhengda/mailboard/internal/triage"
)

// MailService serves triaged mail for one provider.
type MailService struct {
	provider   provider.Provider
	overlays   *triage.Overlays
	merger     *triage.Merger
	summaries  store.SummaryStore
	summarizer ai.Summarizer
	logger     *slog.Logger
}

// Option configures a MailService.
type Option func(*mailOptions)

type mailOptions struct {
	logger     *slog.Logger
	summarizer ai.Summarizer
	triageOpts []triage.Option
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *mailOptions) { o.logger = l }
}

// WithSummarizer enables Summarize.
func WithSummarizer(s ai.Summarizer) Option {
	return func(o *mailOptions) { o.summarizer = s }
}

// WithClock replaces time.Now for snooze handling.
func WithClock(now func() time.Time) Option {
	return func(o *mailOptions) { o.triageOpts = append(o.triageOpts, triage.WithClock(now)) }
}

// StateStore holds the local state layered over provider mail.
type StateStore interface {
	store.OverlayStore
	store.SummaryStore
}

// NewMailService builds a MailService over a provider and local state.
func NewMailService(p provider.Provider, st StateStore, opts ...Option) *MailService {
	o := mailOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	tOpts := append([]triage.Option{triage.WithLogger(o.logger)}, o.triageOpts...)

	return &MailService{
		provider:   p,
		overlays:   triage.NewOverlays(st, tOpts...),
		merger:     triage.NewMerger(st, tOpts...),
		summaries:  st,
		summarizer: o.summarizer,
		logger:     o.logger.With("component", "mail"),
	}
}

// Overlays exposes the triage rules for callers that reconcile history.
func (s *MailService) Overlays() *triage.Overlays {
	return s.overlays
}

// ListOptions selects a page of mail.
type ListOptions struct {
	// Mailbox is a provider label ID such as INBOX. Empty lists everything.
	Mailbox   string
	PageToken string
	PageSize  int
	Query     string
}

// EmailPage is one merged page of mail.
type EmailPage struct {
	Emails             []domain.TriagedEmail
	NextPageToken      string
	ResultSizeEstimate int64
}

// ListEmails fetches a page, normalizes each message and merges triage
// state in one pass.
func (s *MailService) ListEmails(ctx context.Context, userID string, opts ListOptions) (*EmailPage, error) {
	lo := provider.ListOptions{
		PageToken:  opts.PageToken,
		MaxResults: opts.PageSize,
		Query:      opts.Query,
	}
	if opts.Mailbox != "" {
		lo.LabelIDs = []string{opts.Mailbox}
	}

	page, err := s.provider.ListMessages(ctx, lo)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]domain.Email, 0, len(page.Messages))
	for _, msg := range page.Messages {
		mailbox := opts.Mailbox
		if mailbox == "" {
			mailbox = domain.MailboxFromLabels(msg.LabelIds)
		}
		emails = append(emails, normalize.ToEmail(msg, mailbox))
	}

	merged, err := s.merger.Merge(ctx, userID, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to merge triage state: %w", err)
	}

	s.logger.Debug("listed emails", "user", userID, "mailbox", opts.Mailbox, "count", len(merged))
	return &EmailPage{
		Emails:             merged,
		NextPageToken:      page.NextPageToken,
		ResultSizeEstimate: page.ResultSizeEstimate,
	}, nil
}

// GetEmail returns the reading-pane view of one email.
func (s *MailService) GetEmail(ctx context.Context, userID, id string) (*domain.TriagedEmailDetail, error) {
	msg, err := s.provider.GetMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	detail := normalize.ToEmailDetail(msg, domain.MailboxFromLabels(msg.LabelIds))
	merged, err := s.merger.Merge(ctx, userID, []domain.Email{detail.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to merge triage state: %w", err)
	}

	return &domain.TriagedEmailDetail{
		EmailDetail:  detail,
		Status:       merged[0].Status,
		SnoozedUntil: merged[0].SnoozedUntil,
	}, nil
}

// SetStatus moves an email to a board column. SNOOZED goes through Snooze.
func (s *MailService) SetStatus(ctx context.Context, userID, id string, status domain.Status) error {
	if status == domain.StatusSnoozed {
		return triage.ErrSnoozeDeadlineRequired
	}
	mailbox, err := s.mailboxOf(ctx, id)
	if err != nil {
		return err
	}
	if err := s.overlays.Set(ctx, userID, id, status, triage.SetOptions{MailboxID: mailbox}); err != nil {
		return err
	}
	s.logger.Info("status changed", "user", userID, "email", id, "status", status)
	return nil
}

// Snooze hides an email until the deadline passes.
func (s *MailService) Snooze(ctx context.Context, userID, id string, until time.Time) error {
	mailbox, err := s.mailboxOf(ctx, id)
	if err != nil {
		return err
	}
	opts := triage.SetOptions{SnoozedUntil: until, MailboxID: mailbox}
	if err := s.overlays.Set(ctx, userID, id, domain.StatusSnoozed, opts); err != nil {
		return err
	}
	s.logger.Info("snoozed", "user", userID, "email", id, "until", until)
	return nil
}

// Unsnooze wakes an email early and reports where it landed.
func (s *MailService) Unsnooze(ctx context.Context, userID, id string) (domain.Status, error) {
	status, err := s.overlays.Unsnooze(ctx, userID, id)
	if err != nil {
		return "", err
	}
	s.logger.Info("unsnoozed", "user", userID, "email", id, "status", status)
	return status, nil
}

// Snoozed returns a user's snoozed records, earliest deadline first. Records
// already past their deadline are included until a list or read wakes them.
func (s *MailService) Snoozed(ctx context.Context, userID string) ([]domain.StatusOverlay, error) {
	recs, err := s.overlays.List(ctx, userID, domain.StatusSnoozed)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(recs, func(a, b domain.StatusOverlay) int {
		return a.SnoozedUntil.Compare(b.SnoozedUntil)
	})
	return recs, nil
}

// Archive removes an email from the inbox upstream, keeping its column.
func (s *MailService) Archive(ctx context.Context, userID, id string) error {
	if err := s.provider.ModifyLabels(ctx, id, nil, []string{domain.LabelInbox}); err != nil {
		return fmt.Errorf("failed to archive: %w", err)
	}
	return s.overlays.ClearForMailboxMove(ctx, id, userID, domain.MailboxArchive)
}

// Trash moves an email to the trash upstream, keeping its column.
func (s *MailService) Trash(ctx context.Context, userID, id string) error {
	if err := s.provider.TrashMessage(ctx, id); err != nil {
		return fmt.Errorf("failed to trash: %w", err)
	}
	return s.overlays.ClearForMailboxMove(ctx, id, userID, domain.LabelTrash)
}

func (s *MailService) mailboxOf(ctx context.Context, id string) (string, error) {
	msg, err := s.provider.GetMessage(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get message: %w", err)
	}
	return domain.MailboxFromLabels(msg.LabelIds), nil
}

// Summarize returns a cached summary or asks the summarizer for one.
// Failures here never affect list or detail results.
func (s *MailService) Summarize(ctx context.Context, userID, id string) (string, error) {
	if cached, ok, err := s.summaries.GetSummary(ctx, userID, id); err != nil {
		s.logger.Warn("summary cache unavailable", "email", id, "err", err)
	} else if ok {
		return cached, nil
	}

	if s.summarizer == nil {
		return "", ai.ErrNotConfigured
	}

	msg, err := s.provider.GetMessage(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get message: %w", err)
	}
	detail := normalize.ToEmailDetail(msg, domain.MailboxFromLabels(msg.LabelIds))

	summary, err := s.summarizer.Summarize(ctx, detail.Subject, summaryInput(detail))
	if err != nil {
		return "", fmt.Errorf("failed to summarize %s: %w", id, err)
	}

	if err := s.summaries.PutSummary(ctx, userID, id, summary); err != nil {
		s.logger.Warn("failed to cache summary", "email", id, "err", err)
	}
	return summary, nil
}

// summaryInput prefers the plain body, then the HTML body, then the
// snippet.
func summaryInput(d domain.EmailDetail) string {
	for _, s := range []string{d.BodyText, d.BodyHTML, d.Snippet} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
