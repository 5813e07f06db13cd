package cli

import (
	"time"

	"github.com/lu-zhengda/mailboard/internal/app"
	"github.com/lu-zhengda/mailboard/internal/domain"
)

// ---------------------------------------------------------------------------
// Account JSON types (account list)
// ---------------------------------------------------------------------------

type jsonAccount struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Provider  string `json:"provider"`
	CreatedAt string `json:"created_at"`
}

func toJSONAccounts(accounts []domain.Account) []jsonAccount {
	out := make([]jsonAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, jsonAccount{
			ID:        a.ID,
			Email:     a.Email,
			Provider:  a.Provider,
			CreatedAt: a.CreatedAt.Format(time.DateOnly),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Email JSON types (list, board)
// ---------------------------------------------------------------------------

type jsonEmail struct {
	ID             string   `json:"id"`
	ThreadID       string   `json:"thread_id"`
	MailboxID      string   `json:"mailbox_id"`
	From           string   `json:"from"`
	FromName       string   `json:"from_name,omitempty"`
	To             []string `json:"to"`
	CC             []string `json:"cc,omitempty"`
	BCC            []string `json:"bcc,omitempty"`
	Subject        string   `json:"subject"`
	Snippet        string   `json:"snippet"`
	Date           string   `json:"date"`
	IsRead         bool     `json:"is_read"`
	HasAttachments bool     `json:"has_attachments"`
	Labels         []string `json:"labels"`
	Status         string   `json:"status"`
	SnoozedUntil   string   `json:"snoozed_until,omitempty"`
}

func toJSONEmail(e domain.TriagedEmail) jsonEmail {
	return newJSONEmail(e.Email, e.Status, e.SnoozedUntil)
}

func newJSONEmail(e domain.Email, status domain.Status, until time.Time) jsonEmail {
	to := e.To
	if to == nil {
		to = []string{}
	}
	labels := e.Labels
	if labels == nil {
		labels = []string{}
	}
	return jsonEmail{
		ID:             e.ID,
		ThreadID:       e.ThreadID,
		MailboxID:      e.MailboxID,
		From:           e.From,
		FromName:       e.FromName,
		To:             to,
		CC:             e.CC,
		BCC:            e.BCC,
		Subject:        e.Subject,
		Snippet:        e.Snippet,
		Date:           e.Date,
		IsRead:         e.IsRead,
		HasAttachments: e.HasAttachments,
		Labels:         labels,
		Status:         string(status),
		SnoozedUntil:   formatOptionalTime(until),
	}
}

func toJSONEmails(emails []domain.TriagedEmail) []jsonEmail {
	out := make([]jsonEmail, 0, len(emails))
	for _, e := range emails {
		out = append(out, toJSONEmail(e))
	}
	return out
}

type jsonPage struct {
	Emails             []jsonEmail `json:"emails"`
	NextPageToken      string      `json:"next_page_token,omitempty"`
	ResultSizeEstimate int64       `json:"result_size_estimate"`
}

func toJSONPage(p *app.EmailPage) jsonPage {
	return jsonPage{
		Emails:             toJSONEmails(p.Emails),
		NextPageToken:      p.NextPageToken,
		ResultSizeEstimate: p.ResultSizeEstimate,
	}
}

type jsonColumn struct {
	Status string      `json:"status"`
	Emails []jsonEmail `json:"emails"`
}

type jsonBoard struct {
	Columns       []jsonColumn `json:"columns"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

func toJSONBoard(b *app.Board) jsonBoard {
	cols := make([]jsonColumn, 0, len(b.Columns))
	for _, c := range b.Columns {
		cols = append(cols, jsonColumn{Status: string(c.Status), Emails: toJSONEmails(c.Emails)})
	}
	return jsonBoard{Columns: cols, NextPageToken: b.NextPageToken}
}

// ---------------------------------------------------------------------------
// Email detail JSON type (read)
// ---------------------------------------------------------------------------

type jsonAttachment struct {
	ID          string `json:"id"`
	FileName    string `json:"filename"`
	MIMEType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url,omitempty"`
}

type jsonEmailDetail struct {
	jsonEmail
	BodyHTML    string           `json:"body_html,omitempty"`
	BodyText    string           `json:"body_text,omitempty"`
	Attachments []jsonAttachment `json:"attachments,omitempty"`
}

func toJSONEmailDetail(d *domain.TriagedEmailDetail) jsonEmailDetail {
	out := jsonEmailDetail{
		jsonEmail: newJSONEmail(d.Email, d.Status, d.SnoozedUntil),
		BodyHTML:  d.BodyHTML,
		BodyText:  d.BodyText,
	}
	for _, a := range d.Attachments {
		out.Attachments = append(out.Attachments, jsonAttachment{
			ID:          a.ID,
			FileName:    a.FileName,
			MIMEType:    a.MIMEType,
			Size:        a.Size,
			DownloadURL: a.DownloadURL,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Action / result JSON types
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK           bool   `json:"ok"`
	Action       string `json:"action"`
	ID           string `json:"id,omitempty"`
	AccountID    string `json:"account_id,omitempty"`
	Status       string `json:"status,omitempty"`
	SnoozedUntil string `json:"snoozed_until,omitempty"`
}

type jsonSnoozed struct {
	ID           string `json:"id"`
	MailboxID    string `json:"mailbox_id,omitempty"`
	SnoozedUntil string `json:"snoozed_until"`
	ReturnsTo    string `json:"returns_to"`
}

func toJSONSnoozed(recs []domain.StatusOverlay) []jsonSnoozed {
	out := make([]jsonSnoozed, 0, len(recs))
	for _, r := range recs {
		out = append(out, jsonSnoozed{
			ID:           r.EmailID,
			MailboxID:    r.MailboxID,
			SnoozedUntil: formatOptionalTime(r.SnoozedUntil),
			ReturnsTo:    string(r.WakeStatus()),
		})
	}
	return out
}

type jsonSummary struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

type jsonSync struct {
	AccountID string `json:"account_id"`
	HistoryID uint64 `json:"history_id"`
	Added     int    `json:"added"`
	Deleted   int    `json:"deleted"`
	Moved     int    `json:"moved"`
	Reset     bool   `json:"reset"`
}

func toJSONSync(accountID string, r *app.SyncResult) jsonSync {
	return jsonSync{
		AccountID: accountID,
		HistoryID: r.HistoryID,
		Added:     r.Added,
		Deleted:   r.Deleted,
		Moved:     r.Moved,
		Reset:     r.Reset,
	}
}

// formatOptionalTime renders t as RFC 3339 UTC, or "" for the zero time.
func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
