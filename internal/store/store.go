package store

import (
	"context"
	"errors"
	"time"

	"github.com/lu-zhengda/mailboard/internal/domain"
)

var (
	// ErrUnavailable marks a failure to reach the backing store. Callers may
	// retry; it never means "no such record".
	ErrUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned by lookups whose absence is an error for the
	// caller (accounts). Overlay lookups report absence with a nil record.
	ErrNotFound = errors.New("not found")
)

// OverlayStore persists triage overlays keyed by (userID, emailID). It does
// no validation; transition rules live in the triage package.
type OverlayStore interface {
	// GetOverlay returns nil and no error when the email has no overlay.
	GetOverlay(ctx context.Context, userID, emailID string) (*domain.StatusOverlay, error)
	// GetOverlays returns the overlays that exist among emailIDs, keyed by
	// email ID.
	GetOverlays(ctx context.Context, userID string, emailIDs []string) (map[string]domain.StatusOverlay, error)
	PutOverlay(ctx context.Context, overlay *domain.StatusOverlay) error
	// ResolveSnooze moves a snoozed overlay to status only if it is still
	// SNOOZED with the given deadline, clearing the snooze fields and
	// stamping updatedAt. It reports whether the record was changed.
	ResolveSnooze(ctx context.Context, userID, emailID string, deadline time.Time, status domain.Status, updatedAt time.Time) (bool, error)
	DeleteOverlay(ctx context.Context, userID, emailID string) error
	// ListOverlays returns a user's overlays in the given status, or all of
	// them when status is empty.
	ListOverlays(ctx context.Context, userID string, status domain.Status) ([]domain.StatusOverlay, error)
}

// SummaryStore caches AI summaries per (userID, emailID).
type SummaryStore interface {
	GetSummary(ctx context.Context, userID, emailID string) (string, bool, error)
	PutSummary(ctx context.Context, userID, emailID, summary string) error
}

// Store defines the persistence interface for the application.
type Store interface {
	OverlayStore
	SummaryStore

	// Accounts
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// Sync state
	GetSyncState(ctx context.Context, accountID string) (*SyncState, error)
	SetSyncState(ctx context.Context, state *SyncState) error

	// Lifecycle
	Close() error
}

// SyncState tracks how far provider history has been reconciled for an
// account.
type SyncState struct {
	AccountID string `db:"account_id"`
	HistoryID uint64 `db:"history_id"`
	LastSync  int64  `db:"last_sync"` // Unix timestamp
}
