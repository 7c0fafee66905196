package scraps

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/feliperosa/vinculo/internal/fault"
	"github.com/feliperosa/vinculo/internal/platform/id"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
	"github.com/feliperosa/vinculo/internal/services/directory/storage/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "directory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, store), store
}

func seedUser(t *testing.T, store *sqlite.Store, username string) string {
	t.Helper()
	userID, err := id.NewID()
	if err != nil {
		t.Fatalf("generate id: %v", err)
	}
	user := storage.User{
		ID:           userID,
		Name:         username,
		Username:     username,
		PasswordHash: "digest",
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return userID
}

func TestSendAndListReceived(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, store, "ana")
	bia := seedUser(t, store, "bia")

	first, err := svc.Send(ctx, ana, bia, "oi, tudo bem?")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if first.Failed() {
		t.Fatalf("Send() failed: %v", first.Failure())
	}
	if res, err := svc.Send(ctx, ana, bia, "passando de novo"); err != nil || res.Failed() {
		t.Fatalf("second Send() = %v, %v", res, err)
	}

	received, err := svc.ListReceived(ctx, bia)
	if err != nil {
		t.Fatalf("ListReceived() error = %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("ListReceived() returned %d scraps, want 2", len(received))
	}
	if received[0].Message != "oi, tudo bem?" {
		t.Errorf("first message = %q, want oldest first", received[0].Message)
	}

	none, err := svc.ListReceived(ctx, ana)
	if err != nil {
		t.Fatalf("ListReceived() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("sender inbox has %d scraps, want 0", len(none))
	}
}

func TestSendToSelf(t *testing.T) {
	svc, store := newTestService(t)
	ana := seedUser(t, store, "ana")

	res, err := svc.Send(context.Background(), ana, ana, "nota mental")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !res.Failed() || res.Failure().Kind != fault.KindInvalidOperation {
		t.Fatalf("Send(self) = %v, want invalid operation", res)
	}
}

func TestSendValidation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, store, "ana")
	bia := seedUser(t, store, "bia")

	blank, err := svc.Send(ctx, ana, bia, "   ")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !blank.Failed() || blank.Failure().Kind != fault.KindInvalidOperation {
		t.Fatalf("Send(blank) = %v, want invalid operation", blank)
	}

	missing, err := svc.Send(ctx, ana, "missing", "oi")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !missing.Failed() || missing.Failure().Kind != fault.KindResourceNotFound {
		t.Fatalf("Send(unknown recipient) = %v, want not found", missing)
	}
}
