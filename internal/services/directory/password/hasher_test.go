package password

import (
	"strings"
	"testing"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewHasher(DefaultCost)

	digest, err := hasher.Hash("s3nha-segura")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "s3nha-segura" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !hasher.Compare("s3nha-segura", digest) {
		t.Fatal("expected matching password to compare true")
	}
	if hasher.Compare("wrong", digest) {
		t.Fatal("expected mismatching password to compare false")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewHasher(DefaultCost)

	first, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected salted digests to differ for equal inputs")
	}
}

func TestCompareRejectsMalformedDigest(t *testing.T) {
	hasher := NewHasher(DefaultCost)

	if hasher.Compare("anything", "not-a-bcrypt-digest") {
		t.Fatal("expected malformed digest to compare false")
	}
	if hasher.Compare("anything", "") {
		t.Fatal("expected empty digest to compare false")
	}
}

func TestNewHasherClampsInvalidCost(t *testing.T) {
	hasher := NewHasher(-1)

	digest, err := hasher.Hash("abc")
	if err != nil {
		t.Fatalf("hash with clamped cost: %v", err)
	}
	if !strings.HasPrefix(digest, "$2a$08$") {
		t.Fatalf("digest prefix = %q, want cost 08", digest[:7])
	}
}

func TestZeroValueHasherStillHashes(t *testing.T) {
	var hasher Hasher

	digest, err := hasher.Hash("abc")
	if err != nil {
		t.Fatalf("hash with zero-value hasher: %v", err)
	}
	if !hasher.Compare("abc", digest) {
		t.Fatal("expected round trip with zero-value hasher")
	}
}
