package result

import "testing"

func TestOKHoldsSuccess(t *testing.T) {
	r := OK[error]("payload")

	if r.Failed() {
		t.Fatal("expected success result")
	}
	if r.Success() != "payload" {
		t.Fatalf("success = %q, want payload", r.Success())
	}
}

func TestFailHoldsFailure(t *testing.T) {
	r := Fail[string, int]("broken")

	if !r.Failed() {
		t.Fatal("expected failure result")
	}
	if r.Failure() != "broken" {
		t.Fatalf("failure = %q, want broken", r.Failure())
	}
}

func TestSuccessPanicsOnFailure(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when reading success from a failure")
		}
	}()
	_ = Fail[string, int]("broken").Success()
}

func TestFailurePanicsOnSuccess(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when reading failure from a success")
		}
	}()
	_ = OK[string](42).Failure()
}
