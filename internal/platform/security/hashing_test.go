package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatalf("Hash err=%v", err)
	}
	if hash == "secret" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if err := h.Compare(hash, []byte("secret")); err != nil {
		t.Fatalf("Compare err=%v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	t.Parallel()

	if got := NewHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost=%d, want default", got)
	}
	if got := NewHasher(100).Cost; got != bcrypt.MaxCost {
		t.Fatalf("cost=%d, want max", got)
	}
}
