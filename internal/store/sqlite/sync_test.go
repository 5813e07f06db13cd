package sqlite

import (
	"context"
	"testing"

	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/store"
)

func TestSyncState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.CreateAccount(ctx, &domain.Account{ID: "acc-1", Email: "a@test.com", Provider: "gmail"}); err != nil {
		t.Fatalf("CreateAccount() error: %v", err)
	}

	state, err := db.GetSyncState(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetSyncState() error: %v", err)
	}
	if state.AccountID != "acc-1" || state.HistoryID != 0 {
		t.Errorf("initial state = %+v, want empty for acc-1", state)
	}

	want := &store.SyncState{AccountID: "acc-1", HistoryID: 4242, LastSync: 1700000000}
	if err := db.SetSyncState(ctx, want); err != nil {
		t.Fatalf("SetSyncState() error: %v", err)
	}
	want.HistoryID = 5000
	if err := db.SetSyncState(ctx, want); err != nil {
		t.Fatalf("SetSyncState() update error: %v", err)
	}

	got, err := db.GetSyncState(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetSyncState() error: %v", err)
	}
	if got.HistoryID != 5000 {
		t.Errorf("HistoryID = %d, want 5000", got.HistoryID)
	}
	if got.LastSync != 1700000000 {
		t.Errorf("LastSync = %d, want 1700000000", got.LastSync)
	}
}
