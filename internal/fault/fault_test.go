package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindConflict, "edge already exists")

	if !errors.Is(err, New(KindConflict, "different message")) {
		t.Fatal("expected faults with equal kinds to match")
	}
	if errors.Is(err, New(KindUnauthorized, "edge already exists")) {
		t.Fatal("expected faults with different kinds not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindResourceNotFound, "load user", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to match")
	}
	if err.Error() != "load user" {
		t.Fatalf("message = %q, want load user", err.Error())
	}
}

func TestWrappedFaultStillMatchesKind(t *testing.T) {
	err := fmt.Errorf("handle request: %w", New(KindInvalidOperation, "self request"))

	if !errors.Is(err, New(KindInvalidOperation, "")) {
		t.Fatal("expected fault kind to match through wrapping")
	}
}
