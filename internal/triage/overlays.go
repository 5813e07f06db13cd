package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/store"
)

var (
	ErrInvalidStatus          = errors.New("invalid status")
	ErrSnoozeDeadlineRequired = errors.New("snoozed status requires a deadline")
)

// SetOptions carries the optional parts of a status change.
type SetOptions struct {
	// SnoozedUntil is required when the new status is SNOOZED and ignored
	// otherwise.
	SnoozedUntil time.Time
	// MailboxID, when set, replaces the recorded mailbox.
	MailboxID string
}

// Overlays applies triage transitions to a store.OverlayStore.
type Overlays struct {
	store store.OverlayStore
	opts  options
}

// NewOverlays returns an Overlays backed by s.
func NewOverlays(s store.OverlayStore, opts ...Option) *Overlays {
	return &Overlays{store: s, opts: buildOptions(opts)}
}

// Get returns the stored record, or nil when the email has never been
// triaged.
func (o *Overlays) Get(ctx context.Context, userID, emailID string) (*domain.StatusOverlay, error) {
	rec, err := o.store.GetOverlay(ctx, userID, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overlay: %w", err)
	}
	return rec, nil
}

// Set moves an email into status.
//
// Entering SNOOZED remembers the column the email came from so it can be
// restored later; re-snoozing only moves the deadline. Leaving SNOOZED
// forgets it. Other transitions leave PreviousStatus alone.
func (o *Overlays) Set(ctx context.Context, userID, emailID string, status domain.Status, opts SetOptions) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status == domain.StatusSnoozed && opts.SnoozedUntil.IsZero() {
		return ErrSnoozeDeadlineRequired
	}

	cur, err := o.store.GetOverlay(ctx, userID, emailID)
	if err != nil {
		return fmt.Errorf("failed to get overlay: %w", err)
	}

	next := domain.StatusOverlay{UserID: userID, EmailID: emailID}
	from := domain.StatusInbox
	if cur != nil {
		next = *cur
		from = cur.Status
	}

	if status == domain.StatusSnoozed {
		if from != domain.StatusSnoozed {
			next.PreviousStatus = from
		}
		next.SnoozedUntil = opts.SnoozedUntil.UTC()
	} else {
		if from == domain.StatusSnoozed {
			next.PreviousStatus = ""
		}
		next.SnoozedUntil = time.Time{}
	}
	next.Status = status
	if opts.MailboxID != "" {
		next.MailboxID = opts.MailboxID
	}
	next.UpdatedAt = o.opts.now().UTC()

	if err := o.store.PutOverlay(ctx, &next); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

// Unsnooze wakes a snoozed email early and returns its restored status. An
// email that is not snoozed is left alone and its current status returned.
func (o *Overlays) Unsnooze(ctx context.Context, userID, emailID string) (domain.Status, error) {
	cur, err := o.store.GetOverlay(ctx, userID, emailID)
	if err != nil {
		return "", fmt.Errorf("failed to get overlay: %w", err)
	}
	if cur == nil {
		return domain.StatusInbox, nil
	}
	if cur.Status != domain.StatusSnoozed {
		return cur.Status, nil
	}

	woken := wake(*cur, o.opts.now())
	if err := o.store.PutOverlay(ctx, &woken); err != nil {
		return "", fmt.Errorf("failed to unsnooze: %w", err)
	}
	return woken.Status, nil
}

// ClearForMailboxMove records that an email changed mailbox upstream. Its
// triage column survives; a pending snooze does not. Emails without a
// record are ignored.
func (o *Overlays) ClearForMailboxMove(ctx context.Context, emailID, userID, newMailboxID string) error {
	cur, err := o.store.GetOverlay(ctx, userID, emailID)
	if err != nil {
		return fmt.Errorf("failed to get overlay: %w", err)
	}
	if cur == nil {
		return nil
	}

	next := *cur
	if next.Status == domain.StatusSnoozed {
		next = wake(next, o.opts.now())
	}
	next.MailboxID = newMailboxID
	next.UpdatedAt = o.opts.now().UTC()

	if err := o.store.PutOverlay(ctx, &next); err != nil {
		return fmt.Errorf("failed to move overlay: %w", err)
	}
	return nil
}

// Delete drops the record of a permanently removed email.
func (o *Overlays) Delete(ctx context.Context, userID, emailID string) error {
	if err := o.store.DeleteOverlay(ctx, userID, emailID); err != nil {
		return fmt.Errorf("failed to delete overlay: %w", err)
	}
	return nil
}

// List returns a user's records in one status, or all of them.
func (o *Overlays) List(ctx context.Context, userID string, status domain.Status) ([]domain.StatusOverlay, error) {
	recs, err := o.store.ListOverlays(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlays: %w", err)
	}
	return recs, nil
}

// wake resolves a snoozed record to the status it came from.
func wake(rec domain.StatusOverlay, now time.Time) domain.StatusOverlay {
	rec.Status = rec.WakeStatus()
	rec.PreviousStatus = ""
	rec.SnoozedUntil = time.Time{}
	rec.UpdatedAt = now.UTC()
	return rec
}
