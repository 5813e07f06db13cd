// Package memory provides a map-backed overlay and summary store for tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/store"
)

type key struct {
	userID  string
	emailID string
}

// Store keeps overlays and summaries in process memory. It is safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	overlays  map[key]domain.StatusOverlay
	summaries map[key]string

	// Err, when set, is returned (wrapped in store.ErrUnavailable) by every
	// call.
	Err error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		overlays:  make(map[key]domain.StatusOverlay),
		summaries: make(map[key]string),
	}
}

func (s *Store) fail() error {
	if s.Err == nil {
		return nil
	}
	return errors.Join(store.ErrUnavailable, s.Err)
}

func (s *Store) GetOverlay(ctx context.Context, userID, emailID string) (*domain.StatusOverlay, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overlays[key{userID, emailID}]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Store) GetOverlays(ctx context.Context, userID string, emailIDs []string) (map[string]domain.StatusOverlay, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.StatusOverlay, len(emailIDs))
	for _, id := range emailIDs {
		if o, ok := s.overlays[key{userID, id}]; ok {
			out[id] = o
		}
	}
	return out, nil
}

func (s *Store) PutOverlay(ctx context.Context, o *domain.StatusOverlay) error {
	if err := s.fail(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays[key{o.UserID, o.EmailID}] = *o
	return nil
}

func (s *Store) ResolveSnooze(ctx context.Context, userID, emailID string, deadline time.Time, status domain.Status, updatedAt time.Time) (bool, error) {
	if err := s.fail(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{userID, emailID}
	o, ok := s.overlays[k]
	if !ok || o.Status != domain.StatusSnoozed || !o.SnoozedUntil.Equal(deadline) {
		return false, nil
	}
	o.Status = status
	o.PreviousStatus = ""
	o.SnoozedUntil = time.Time{}
	o.UpdatedAt = updatedAt
	s.overlays[k] = o
	return true, nil
}

func (s *Store) DeleteOverlay(ctx context.Context, userID, emailID string) error {
	if err := s.fail(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overlays, key{userID, emailID})
	return nil
}

func (s *Store) ListOverlays(ctx context.Context, userID string, status domain.Status) ([]domain.StatusOverlay, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.StatusOverlay
	for k, o := range s.overlays {
		if k.userID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].EmailID < out[j].EmailID
	})
	return out, nil
}

func (s *Store) GetSummary(ctx context.Context, userID, emailID string) (string, bool, error) {
	if err := s.fail(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.summaries[key{userID, emailID}]
	return v, ok, nil
}

func (s *Store) PutSummary(ctx context.Context, userID, emailID, summary string) error {
	if err := s.fail(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[key{userID, emailID}] = summary
	return nil
}

// Len reports how many overlays are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overlays)
}

var (
	_ store.OverlayStore = (*Store)(nil)
	_ store.SummaryStore = (*Store)(nil)
)
