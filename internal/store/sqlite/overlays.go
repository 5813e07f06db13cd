package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lu-zhengda/mailboard/internal/domain"
)

// overlayRow is the on-disk shape of a domain.StatusOverlay. Times are
// stored as Unix milliseconds, 0 meaning unset.
type overlayRow struct {
	UserID         string `db:"user_id"`
	EmailID        string `db:"email_id"`
	MailboxID      string `db:"mailbox_id"`
	Status         string `db:"status"`
	PreviousStatus string `db:"previous_status"`
	SnoozedUntil   int64  `db:"snoozed_until"`
	UpdatedAt      int64  `db:"updated_at"`
}

const overlayColumns = `user_id, email_id, mailbox_id, status, previous_status, snoozed_until, updated_at`

func toOverlayRow(o *domain.StatusOverlay) overlayRow {
	return overlayRow{
		UserID:         o.UserID,
		EmailID:        o.EmailID,
		MailboxID:      o.MailboxID,
		Status:         string(o.Status),
		PreviousStatus: string(o.PreviousStatus),
		SnoozedUntil:   toMillis(o.SnoozedUntil),
		UpdatedAt:      toMillis(o.UpdatedAt),
	}
}

func (r overlayRow) toDomain() domain.StatusOverlay {
	return domain.StatusOverlay{
		UserID:         r.UserID,
		EmailID:        r.EmailID,
		MailboxID:      r.MailboxID,
		Status:         domain.Status(r.Status),
		PreviousStatus: domain.Status(r.PreviousStatus),
		SnoozedUntil:   fromMillis(r.SnoozedUntil),
		UpdatedAt:      fromMillis(r.UpdatedAt),
	}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// GetOverlay returns the overlay for one email, or nil when none exists.
func (s *DB) GetOverlay(ctx context.Context, userID, emailID string) (*domain.StatusOverlay, error) {
	var row overlayRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+overlayColumns+` FROM overlays WHERE user_id = ? AND email_id = ?`,
		userID, emailID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get overlay "+emailID, err)
	}
	o := row.toDomain()
	return &o, nil
}

// GetOverlays looks up overlays for a batch of emails in one query.
func (s *DB) GetOverlays(ctx context.Context, userID string, emailIDs []string) (map[string]domain.StatusOverlay, error) {
	out := make(map[string]domain.StatusOverlay, len(emailIDs))
	if len(emailIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+overlayColumns+` FROM overlays WHERE user_id = ? AND email_id IN (?)`,
		userID, emailIDs,
	)
	if err != nil {
		return nil, unavailable("build overlay query", err)
	}

	var rows []overlayRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, unavailable("get overlays", err)
	}
	for _, r := range rows {
		out[r.EmailID] = r.toDomain()
	}
	return out, nil
}

// PutOverlay inserts or replaces an overlay.
func (s *DB) PutOverlay(ctx context.Context, o *domain.StatusOverlay) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO overlays (`+overlayColumns+`)
		VALUES (:user_id, :email_id, :mailbox_id, :status, :previous_status, :snoozed_until, :updated_at)
		ON CONFLICT(user_id, email_id) DO UPDATE SET
			mailbox_id      = excluded.mailbox_id,
			status          = excluded.status,
			previous_status = excluded.previous_status,
			snoozed_until   = excluded.snoozed_until,
			updated_at      = excluded.updated_at`,
		toOverlayRow(o),
	)
	if err != nil {
		return unavailable("put overlay "+o.EmailID, err)
	}
	return nil
}

// ResolveSnooze wakes an overlay only while it still holds the snooze the
// caller read.
func (s *DB) ResolveSnooze(ctx context.Context, userID, emailID string, deadline time.Time, status domain.Status, updatedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE overlays
		SET status = ?, previous_status = '', snoozed_until = 0, updated_at = ?
		WHERE user_id = ? AND email_id = ? AND status = ? AND snoozed_until = ?`,
		string(status), toMillis(updatedAt), userID, emailID, string(domain.StatusSnoozed), toMillis(deadline),
	)
	if err != nil {
		return false, unavailable("resolve snooze "+emailID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("resolve snooze "+emailID, err)
	}
	return n == 1, nil
}

// DeleteOverlay removes an overlay. Deleting a missing overlay is a no-op.
func (s *DB) DeleteOverlay(ctx context.Context, userID, emailID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM overlays WHERE user_id = ? AND email_id = ?`, userID, emailID,
	)
	if err != nil {
		return unavailable("delete overlay "+emailID, err)
	}
	return nil
}

// ListOverlays returns a user's overlays, most recently changed first.
func (s *DB) ListOverlays(ctx context.Context, userID string, status domain.Status) ([]domain.StatusOverlay, error) {
	query := `SELECT ` + overlayColumns + ` FROM overlays WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC, email_id`

	var rows []overlayRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("list overlays", err)
	}
	out := make([]domain.StatusOverlay, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
