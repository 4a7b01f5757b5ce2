package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ENuel20/SoNa/internal/wallet"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "history.db"), filepath.Join(dir, "history.lock"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func record(sig string, state wallet.ConfirmationState, at time.Time) wallet.TransactionRecord {
	return wallet.TransactionRecord{
		Signature: sig,
		Asset:     "SOL",
		Amount:    "1.5",
		Direction: wallet.DirectionOut,
		Timestamp: at,
		State:     state,
	}
}

func TestSaveAndListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, sig := range []string{"sig-a", "sig-b", "sig-c"} {
		if err := store.Save(record(sig, wallet.StateConfirmed, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save %s failed: %v", sig, err)
		}
	}

	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want 3", len(records))
	}
	want := []string{"sig-c", "sig-b", "sig-a"}
	for i, sig := range want {
		if records[i].Signature != sig {
			t.Fatalf("records[%d] = %q, want %q", i, records[i].Signature, sig)
		}
	}
	if records[0].Amount != "1.5" || records[0].Asset != "SOL" {
		t.Fatalf("payload not preserved: %+v", records[0])
	}
}

func TestSaveUpsertsStateResolution(t *testing.T) {
	store := openTestStore(t)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Save(record("sig-a", wallet.StateSubmitted, at)); err != nil {
		t.Fatalf("Save submitted failed: %v", err)
	}
	if err := store.Save(record("sig-a", wallet.StateConfirmed, at)); err != nil {
		t.Fatalf("Save confirmed failed: %v", err)
	}

	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1 after upsert", len(records))
	}
	if records[0].State != wallet.StateConfirmed {
		t.Fatalf("state = %q, want confirmed", records[0].State)
	}
}

func TestSaveRejectsMissingSignature(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(wallet.TransactionRecord{Asset: "SOL"}); err == nil {
		t.Fatal("expected error for record without signature")
	}
}

func TestListHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sig := string(rune('a'+i)) + "-sig"
		if err := store.Save(record(sig, wallet.StateConfirmed, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	records, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want 2", len(records))
	}
}

func TestListEmptyStore(t *testing.T) {
	store := openTestStore(t)
	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("record count = %d, want 0", len(records))
	}
}
