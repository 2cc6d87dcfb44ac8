package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_IssueValidateRoundTrip(t *testing.T) {
	t.Parallel()
	p := NewTokenProvider([]byte("secret"), "club-manager-test", time.Hour)

	tok, err := p.Issue("sub-1", "alice@example.com", time.Now())
	if err != nil {
		t.Fatalf("Issue err=%v", err)
	}
	subject, email, err := p.Validate(tok)
	if err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	if subject != "sub-1" || email != "alice@example.com" {
		t.Fatalf("subject=%q email=%q", subject, email)
	}
}

func TestTokenProvider_RejectsWrongSecret(t *testing.T) {
	t.Parallel()
	p := NewTokenProvider([]byte("secret"), "iss", time.Hour)
	other := NewTokenProvider([]byte("different"), "iss", time.Hour)

	tok, err := p.Issue("sub-1", "a@example.com", time.Now())
	if err != nil {
		t.Fatalf("Issue err=%v", err)
	}
	if _, _, err := other.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err=%v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsWrongIssuer(t *testing.T) {
	t.Parallel()
	p := NewTokenProvider([]byte("secret"), "iss-a", time.Hour)
	q := NewTokenProvider([]byte("secret"), "iss-b", time.Hour)

	tok, err := p.Issue("sub-1", "a@example.com", time.Now())
	if err != nil {
		t.Fatalf("Issue err=%v", err)
	}
	if _, _, err := q.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err=%v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsExpired(t *testing.T) {
	t.Parallel()
	p := NewTokenProvider([]byte("secret"), "iss", time.Minute)

	tok, err := p.Issue("sub-1", "a@example.com", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue err=%v", err)
	}
	if _, _, err := p.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err=%v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsGarbage(t *testing.T) {
	t.Parallel()
	p := NewTokenProvider([]byte("secret"), "iss", time.Hour)

	if _, _, err := p.Validate("definitely.not.a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err=%v, want ErrInvalidToken", err)
	}
}
