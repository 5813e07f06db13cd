package triage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/store"
)

// Merger pairs emails with their triage status.
type Merger struct {
	store store.OverlayStore
	opts  options
}

// NewMerger returns a Merger reading from s.
func NewMerger(s store.OverlayStore, opts ...Option) *Merger {
	return &Merger{store: s, opts: buildOptions(opts)}
}

// Merge returns one TriagedEmail per input email, in input order. Emails
// with no record are INBOX. Snoozes whose deadline has passed are resolved
// and persisted before Merge returns, so the next read sees the woken
// status. A resolution only lands if the record still holds the snooze that
// was read; when a concurrent change got there first, the stored record is
// reported instead.
func (m *Merger) Merge(ctx context.Context, userID string, emails []domain.Email) ([]domain.TriagedEmail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.ID
	}
	recs, err := m.store.GetOverlays(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlays: %w", err)
	}

	now := m.opts.now()
	out := make([]domain.TriagedEmail, len(emails))
	var expired []domain.StatusOverlay
	resolved := make(map[string]bool)

	for i, e := range emails {
		out[i] = domain.TriagedEmail{Email: e, Status: domain.StatusInbox}
		rec, ok := recs[e.ID]
		if !ok {
			continue
		}
		if rec.SnoozeExpired(now) {
			if !resolved[e.ID] {
				resolved[e.ID] = true
				expired = append(expired, rec)
			}
			rec = wake(rec, now)
		}
		annotate(&out[i], &rec)
	}

	if len(expired) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		stale = make(map[string]*domain.StatusOverlay)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.writeLimit)
	for _, rec := range expired {
		g.Go(func() error {
			status := rec.WakeStatus()
			ok, err := m.store.ResolveSnooze(gctx, userID, rec.EmailID, rec.SnoozedUntil, status, now.UTC())
			if err != nil {
				return fmt.Errorf("failed to resolve snooze for %s: %w", rec.EmailID, err)
			}
			if ok {
				m.opts.logger.Debug("snooze expired", "user", userID, "email", rec.EmailID, "status", status)
				return nil
			}

			cur, err := m.store.GetOverlay(gctx, userID, rec.EmailID)
			if err != nil {
				return fmt.Errorf("failed to reload overlay %s: %w", rec.EmailID, err)
			}
			m.opts.logger.Debug("snooze changed before expiry write", "user", userID, "email", rec.EmailID)
			mu.Lock()
			stale[rec.EmailID] = cur
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		cur, ok := stale[out[i].ID]
		if !ok {
			continue
		}
		out[i].Status = domain.StatusInbox
		out[i].SnoozedUntil = time.Time{}
		if cur != nil {
			annotate(&out[i], cur)
		}
	}
	return out, nil
}

// annotate copies the effective status of rec onto te.
func annotate(te *domain.TriagedEmail, rec *domain.StatusOverlay) {
	te.Status = rec.Status
	if rec.Status == domain.StatusSnoozed {
		te.SnoozedUntil = rec.SnoozedUntil
	}
}
