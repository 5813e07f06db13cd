package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/store"
)

func TestOverlayRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if got, err := s.GetOverlay(ctx, "u1", "m1"); err != nil || got != nil {
		t.Fatalf("GetOverlay() on empty = %+v, %v; want nil, nil", got, err)
	}

	if err := s.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m1", Status: domain.StatusToDo}); err != nil {
		t.Fatalf("PutOverlay() error: %v", err)
	}
	got, err := s.GetOverlay(ctx, "u1", "m1")
	if err != nil {
		t.Fatalf("GetOverlay() error: %v", err)
	}
	if got == nil || got.Status != domain.StatusToDo {
		t.Errorf("GetOverlay() = %+v, want TO_DO", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.Status = domain.StatusDone
	again, _ := s.GetOverlay(ctx, "u1", "m1")
	if again.Status != domain.StatusToDo {
		t.Errorf("stored status = %q, want TO_DO", again.Status)
	}

	if err := s.DeleteOverlay(ctx, "u1", "m1"); err != nil {
		t.Fatalf("DeleteOverlay() error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestGetOverlays_ScopedToUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m1", Status: domain.StatusDone})
	s.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u2", EmailID: "m2", Status: domain.StatusDone})

	got, err := s.GetOverlays(ctx, "u1", []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("GetOverlays() error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d overlays, want 1", len(got))
	}
}

func TestListOverlays_Order(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "a", Status: domain.StatusToDo, UpdatedAt: base})
	s.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "b", Status: domain.StatusToDo, UpdatedAt: base.Add(time.Hour)})
	s.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "c", Status: domain.StatusDone, UpdatedAt: base})

	got, err := s.ListOverlays(ctx, "u1", domain.StatusToDo)
	if err != nil {
		t.Fatalf("ListOverlays() error: %v", err)
	}
	if len(got) != 2 || got[0].EmailID != "b" || got[1].EmailID != "a" {
		t.Errorf("ListOverlays() = %+v, want [b a]", got)
	}
}

func TestInjectedError(t *testing.T) {
	s := New()
	s.Err = errors.New("disk on fire")

	_, err := s.GetOverlay(context.Background(), "u1", "m1")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestSummaries(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.PutSummary(ctx, "u1", "m1", "hello")

	got, ok, err := s.GetSummary(ctx, "u1", "m1")
	if err != nil || !ok || got != "hello" {
		t.Errorf("GetSummary() = %q, %v, %v; want hello, true, nil", got, ok, err)
	}
}

func TestResolveSnooze(t *testing.T) {
	s := New()
	ctx := context.Background()
	deadline := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.PutOverlay(ctx, &domain.StatusOverlay{
		UserID: "u1", EmailID: "m1", Status: domain.StatusSnoozed,
		PreviousStatus: domain.StatusToDo, SnoozedUntil: deadline,
	})

	if ok, err := s.ResolveSnooze(ctx, "u1", "m1", deadline.Add(time.Second), domain.StatusToDo, deadline); err != nil || ok {
		t.Errorf("ResolveSnooze(other deadline) = %v, %v; want false, nil", ok, err)
	}
	ok, err := s.ResolveSnooze(ctx, "u1", "m1", deadline, domain.StatusToDo, deadline)
	if err != nil || !ok {
		t.Fatalf("ResolveSnooze() = %v, %v; want true, nil", ok, err)
	}
	got, _ := s.GetOverlay(ctx, "u1", "m1")
	if got.Status != domain.StatusToDo || got.PreviousStatus != "" || !got.SnoozedUntil.IsZero() {
		t.Errorf("resolved overlay = %+v, want TO_DO with snooze cleared", got)
	}

	// A second resolution finds nothing to do.
	if ok, _ := s.ResolveSnooze(ctx, "u1", "m1", deadline, domain.StatusToDo, deadline); ok {
		t.Error("second ResolveSnooze() = true, want false")
	}
}
