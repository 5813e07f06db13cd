package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/provider"
	"github.com/lu-zhengda/mailboard/internal/store"
	"github.com/lu-zhengda/mailboard/internal/triage"
)

// SyncStateStore records how far history has been replayed per account.
type SyncStateStore interface {
	GetSyncState(ctx context.Context, accountID string) (*store.SyncState, error)
	SetSyncState(ctx context.Context, state *store.SyncState) error
}

// Reconciler replays upstream history into triage state for one account:
// permanently deleted messages lose their overlay and messages that moved
// mailbox have the move recorded.
type Reconciler struct {
	state     SyncStateStore
	history   provider.HistorySource
	overlays  *triage.Overlays
	accountID string
	logger    *slog.Logger
	now       func() time.Time
}

// NewReconciler creates a Reconciler for accountID.
func NewReconciler(state SyncStateStore, history provider.HistorySource, overlays *triage.Overlays, accountID string, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{
		state:     state,
		history:   history,
		overlays:  overlays,
		accountID: accountID,
		logger:    logger.With("component", "sync", "account", accountID),
		now:       time.Now,
	}
}

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	HistoryID uint64
	Added     int
	Deleted   int
	Moved     int
	// Reset is true when no usable history ID existed and the run only
	// recorded a new starting point.
	Reset bool
}

// Sync replays history since the last run. Without a stored history ID,
// or when the stored one has expired upstream, it records the current ID
// and returns.
func (r *Reconciler) Sync(ctx context.Context) (*SyncResult, error) {
	st, err := r.state.GetSyncState(ctx, r.accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if st == nil || st.HistoryID == 0 {
		r.logger.Info("no history id found, recording baseline")
		return r.reset(ctx)
	}

	events, newHistoryID, err := r.history.History(ctx, st.HistoryID)
	if errors.Is(err, provider.ErrHistoryExpired) {
		r.logger.Warn("history id expired, recording new baseline", "history_id", st.HistoryID)
		return r.reset(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	res := &SyncResult{HistoryID: newHistoryID}
	for _, ev := range events {
		switch ev.Type {
		case provider.HistoryMessageAdded:
			res.Added++

		case provider.HistoryMessageDeleted:
			if err := r.overlays.Delete(ctx, r.accountID, ev.MessageID); err != nil {
				return nil, fmt.Errorf("failed to drop overlay for %s: %w", ev.MessageID, err)
			}
			res.Deleted++

		case provider.HistoryLabelsAdded, provider.HistoryLabelsRemoved:
			moved, err := r.applyLabels(ctx, ev)
			if err != nil {
				return nil, err
			}
			if moved {
				res.Moved++
			}
		}
	}

	if err := r.save(ctx, newHistoryID); err != nil {
		return nil, err
	}

	r.logger.Info("sync complete",
		"history_id", newHistoryID, "added", res.Added, "deleted", res.Deleted, "moved", res.Moved)
	return res, nil
}

// applyLabels records a mailbox change when the message's new label set
// puts it somewhere other than where its overlay says it lives.
func (r *Reconciler) applyLabels(ctx context.Context, ev provider.HistoryEvent) (bool, error) {
	if ev.Labels == nil {
		return false, nil
	}
	rec, err := r.overlays.Get(ctx, r.accountID, ev.MessageID)
	if err != nil {
		return false, fmt.Errorf("failed to load overlay for %s: %w", ev.MessageID, err)
	}
	mailbox := domain.MailboxFromLabels(ev.Labels)
	if rec == nil || rec.MailboxID == mailbox {
		return false, nil
	}
	if err := r.overlays.ClearForMailboxMove(ctx, ev.MessageID, r.accountID, mailbox); err != nil {
		return false, fmt.Errorf("failed to record move for %s: %w", ev.MessageID, err)
	}
	r.logger.Debug("mailbox changed", "email", ev.MessageID, "from", rec.MailboxID, "to", mailbox)
	return true, nil
}

func (r *Reconciler) reset(ctx context.Context) (*SyncResult, error) {
	id, err := r.history.LatestHistoryID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest history id: %w", err)
	}
	if err := r.save(ctx, id); err != nil {
		return nil, err
	}
	return &SyncResult{HistoryID: id, Reset: true}, nil
}

func (r *Reconciler) save(ctx context.Context, historyID uint64) error {
	if err := r.state.SetSyncState(ctx, &store.SyncState{
		AccountID: r.accountID,
		HistoryID: historyID,
		LastSync:  r.now().Unix(),
	}); err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}
