package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/lu-zhengda/mailboard/internal/domain"
)

func TestGetOverlay_Missing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetOverlay(context.Background(), "u1", "nope")
	if err != nil {
		t.Fatalf("GetOverlay() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetOverlay() = %+v, want nil", got)
	}
}

func TestPutAndGetOverlay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	until := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 2, 1, 8, 30, 15, 250_000_000, time.UTC)
	in := &domain.StatusOverlay{
		UserID:         "u1",
		EmailID:        "m1",
		MailboxID:      "INBOX",
		Status:         domain.StatusSnoozed,
		PreviousStatus: domain.StatusToDo,
		SnoozedUntil:   until,
		UpdatedAt:      updated,
	}
	if err := db.PutOverlay(ctx, in); err != nil {
		t.Fatalf("PutOverlay() error: %v", err)
	}

	got, err := db.GetOverlay(ctx, "u1", "m1")
	if err != nil {
		t.Fatalf("GetOverlay() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetOverlay() = nil, want overlay")
	}
	if got.Status != domain.StatusSnoozed {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusSnoozed)
	}
	if got.PreviousStatus != domain.StatusToDo {
		t.Errorf("PreviousStatus = %q, want %q", got.PreviousStatus, domain.StatusToDo)
	}
	if got.MailboxID != "INBOX" {
		t.Errorf("MailboxID = %q, want INBOX", got.MailboxID)
	}
	if !got.SnoozedUntil.Equal(until) {
		t.Errorf("SnoozedUntil = %v, want %v", got.SnoozedUntil, until)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
	}
}

func TestPutOverlay_Replaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.PutOverlay(ctx, &domain.StatusOverlay{
		UserID: "u1", EmailID: "m1", Status: domain.StatusSnoozed,
		PreviousStatus: domain.StatusToDo, SnoozedUntil: time.Now().Add(time.Hour),
	})
	if err := db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m1", Status: domain.StatusDone}); err != nil {
		t.Fatalf("PutOverlay() error: %v", err)
	}

	got, _ := db.GetOverlay(ctx, "u1", "m1")
	if got.Status != domain.StatusDone {
		t.Errorf("Status = %q, want DONE", got.Status)
	}
	if got.PreviousStatus != "" {
		t.Errorf("PreviousStatus = %q, want empty", got.PreviousStatus)
	}
	if !got.SnoozedUntil.IsZero() {
		t.Errorf("SnoozedUntil = %v, want zero", got.SnoozedUntil)
	}
}

func TestGetOverlays_Batch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m1", Status: domain.StatusToDo})
	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m3", Status: domain.StatusDone})
	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u2", EmailID: "m2", Status: domain.StatusDone})

	got, err := db.GetOverlays(ctx, "u1", []string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatalf("GetOverlays() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d overlays, want 2: %v", len(got), got)
	}
	if got["m1"].Status != domain.StatusToDo {
		t.Errorf("m1 status = %q, want TO_DO", got["m1"].Status)
	}
	if _, ok := got["m2"]; ok {
		t.Error("m2 belongs to another user and should not be returned")
	}
}

func TestGetOverlays_Empty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetOverlays(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("GetOverlays() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d overlays, want 0", len(got))
	}
}

func TestDeleteOverlay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m1", Status: domain.StatusToDo})
	if err := db.DeleteOverlay(ctx, "u1", "m1"); err != nil {
		t.Fatalf("DeleteOverlay() error: %v", err)
	}
	if err := db.DeleteOverlay(ctx, "u1", "m1"); err != nil {
		t.Fatalf("second DeleteOverlay() error: %v", err)
	}

	got, _ := db.GetOverlay(ctx, "u1", "m1")
	if got != nil {
		t.Errorf("GetOverlay() after delete = %+v, want nil", got)
	}
}

func TestListOverlays(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m1", Status: domain.StatusToDo, UpdatedAt: base})
	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m2", Status: domain.StatusToDo, UpdatedAt: base.Add(time.Minute)})
	db.PutOverlay(ctx, &domain.StatusOverlay{UserID: "u1", EmailID: "m3", Status: domain.StatusDone, UpdatedAt: base})

	todo, err := db.ListOverlays(ctx, "u1", domain.StatusToDo)
	if err != nil {
		t.Fatalf("ListOverlays() error: %v", err)
	}
	if len(todo) != 2 {
		t.Fatalf("got %d TO_DO overlays, want 2", len(todo))
	}
	if todo[0].EmailID != "m2" {
		t.Errorf("first overlay = %q, want most recent m2", todo[0].EmailID)
	}

	all, err := db.ListOverlays(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListOverlays() error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d overlays, want 3", len(all))
	}
}

func TestResolveSnooze(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	woke := deadline.Add(time.Minute)

	tests := []struct {
		name     string
		stored   domain.StatusOverlay
		deadline time.Time
		want     bool
		wantStat domain.Status
	}{
		{
			name:     "still snoozed",
			stored:   domain.StatusOverlay{Status: domain.StatusSnoozed, PreviousStatus: domain.StatusToDo, SnoozedUntil: deadline},
			deadline: deadline,
			want:     true,
			wantStat: domain.StatusToDo,
		},
		{
			name:     "moved on",
			stored:   domain.StatusOverlay{Status: domain.StatusDone},
			deadline: deadline,
			want:     false,
			wantStat: domain.StatusDone,
		},
		{
			name:     "re-snoozed",
			stored:   domain.StatusOverlay{Status: domain.StatusSnoozed, PreviousStatus: domain.StatusToDo, SnoozedUntil: deadline.Add(time.Hour)},
			deadline: deadline,
			want:     false,
			wantStat: domain.StatusSnoozed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			ctx := context.Background()
			rec := tt.stored
			rec.UserID, rec.EmailID = "u1", "m1"
			if err := db.PutOverlay(ctx, &rec); err != nil {
				t.Fatalf("PutOverlay() error: %v", err)
			}

			ok, err := db.ResolveSnooze(ctx, "u1", "m1", tt.deadline, domain.StatusToDo, woke)
			if err != nil {
				t.Fatalf("ResolveSnooze() error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("ResolveSnooze() = %v, want %v", ok, tt.want)
			}

			got, _ := db.GetOverlay(ctx, "u1", "m1")
			if got.Status != tt.wantStat {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStat)
			}
			if tt.want {
				if got.PreviousStatus != "" || !got.SnoozedUntil.IsZero() {
					t.Errorf("snooze fields not cleared: %+v", got)
				}
				if !got.UpdatedAt.Equal(woke) {
					t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, woke)
				}
			}
		})
	}
}

func TestResolveSnooze_Missing(t *testing.T) {
	db := newTestDB(t)

	ok, err := db.ResolveSnooze(context.Background(), "u1", "nope", time.Now(), domain.StatusInbox, time.Now())
	if err != nil || ok {
		t.Errorf("ResolveSnooze() = %v, %v; want false, nil", ok, err)
	}
}
