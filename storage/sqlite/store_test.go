package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "credential.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadTokenEmptyWhenAbsent(t *testing.T) {
	store := openTempStore(t)

	token, err := store.LoadToken(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "" {
		t.Fatalf("token = %q, want empty", token)
	}
}

func TestSaveLoadTokenRoundTrip(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := store.SaveToken(context.Background(), "tok-123", now); err != nil {
		t.Fatalf("save token: %v", err)
	}

	token, err := store.LoadToken(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("token = %q, want tok-123", token)
	}
}

func TestSaveTokenReplacesPrevious(t *testing.T) {
	store := openTempStore(t)
	now := time.Now()

	if err := store.SaveToken(context.Background(), "tok-old", now); err != nil {
		t.Fatalf("save first token: %v", err)
	}
	if err := store.SaveToken(context.Background(), "tok-new", now.Add(time.Minute)); err != nil {
		t.Fatalf("save second token: %v", err)
	}

	token, err := store.LoadToken(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "tok-new" {
		t.Fatalf("token = %q, want tok-new", token)
	}
}

func TestSaveTokenRejectsEmpty(t *testing.T) {
	store := openTempStore(t)
	if err := store.SaveToken(context.Background(), "  ", time.Now()); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestDeleteToken(t *testing.T) {
	store := openTempStore(t)

	if err := store.SaveToken(context.Background(), "tok-123", time.Now()); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := store.DeleteToken(context.Background()); err != nil {
		t.Fatalf("delete token: %v", err)
	}

	token, err := store.LoadToken(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "" {
		t.Fatalf("token = %q, want empty after delete", token)
	}

	// Deleting again is a no-op.
	if err := store.DeleteToken(context.Background()); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.SaveToken(context.Background(), "tok-persist", time.Now()); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	token, err := reopened.LoadToken(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "tok-persist" {
		t.Fatalf("token = %q, want tok-persist after reopen", token)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
	if _, err := store.LoadToken(context.Background()); err == nil {
		t.Fatal("expected error for nil store load")
	}
}
