package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memclock "github.com/offroadmga/club-manager-api/internal/adapters/memory/clock"
	memkvstore "github.com/offroadmga/club-manager-api/internal/adapters/memory/kvstore"
	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/platform/security"
	"github.com/offroadmga/club-manager-api/internal/ports/out/identity"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	// Token exp is validated against wall time, so the manual clock starts
	// at the present.
	clk := memclock.NewManualClock(time.Now().UTC())
	hasher := security.NewHasher(bcrypt.MinCost)
	tokens := security.NewTokenProvider([]byte("test-secret"), "club-manager-test", time.Hour)
	return NewProvider(memkvstore.NewStore(), hasher, tokens, clk)
}

type recordedEvent struct {
	ev    identity.Event
	ident *domain.Identity
}

func record(p *Provider) *[]recordedEvent {
	var events []recordedEvent
	p.Subscribe(func(ev identity.Event, ident *domain.Identity) {
		events = append(events, recordedEvent{ev: ev, ident: ident})
	})
	return &events
}

func TestProvider_SignUpThenSignIn(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	up, err := p.SignUp(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp err=%v", err)
	}
	if up.Subject == "" || up.AccessToken == "" {
		t.Fatalf("identity=%+v", up)
	}

	in, err := p.SignIn(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn err=%v", err)
	}
	if in.Subject != up.Subject {
		t.Fatalf("subject changed across sign-in: %s vs %s", in.Subject, up.Subject)
	}

	// Email match is case-insensitive.
	if _, err := p.SignIn(ctx, "ALICE@example.com", "secret"); err != nil {
		t.Fatalf("case-insensitive SignIn err=%v", err)
	}

	if _, err := p.SignIn(ctx, "alice@example.com", "wrong"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("wrong password err=%v, want ErrInvalidCredentials", err)
	}
	if _, err := p.SignIn(ctx, "nobody@example.com", "secret"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("unknown account err=%v, want ErrInvalidCredentials", err)
	}
}

func TestProvider_SignUpDuplicate(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("SignUp err=%v", err)
	}
	if _, err := p.SignUp(ctx, "Alice@Example.com", "other"); !errors.Is(err, identity.ErrAccountExists) {
		t.Fatalf("duplicate err=%v, want ErrAccountExists", err)
	}
}

func TestProvider_EventOrdering(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	events := record(p)

	if _, err := p.SignUp(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("SignUp err=%v", err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut err=%v", err)
	}
	// Signing out while signed out must not emit another event.
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("second SignOut err=%v", err)
	}
	if _, err := p.SignIn(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("SignIn err=%v", err)
	}

	want := []identity.Event{
		identity.EventInitialSession,
		identity.EventSignedUp,
		identity.EventSignedOut,
		identity.EventSignedIn,
	}
	got := *events
	if len(got) != len(want) {
		t.Fatalf("events=%d, want %d", len(got), len(want))
	}
	for i, ev := range want {
		if got[i].ev != ev {
			t.Fatalf("event[%d]=%s, want %s", i, got[i].ev, ev)
		}
	}
	if got[1].ident == nil || got[2].ident != nil || got[3].ident == nil {
		t.Fatalf("event identities out of shape")
	}
}

func TestProvider_SubscribeReportsCurrentSession(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("SignUp err=%v", err)
	}

	// A late subscriber synchronously learns about the active session.
	var gotEv identity.Event
	var gotIdent *domain.Identity
	p.Subscribe(func(ev identity.Event, ident *domain.Identity) {
		if gotEv == "" {
			gotEv = ev
			gotIdent = ident
		}
	})
	if gotEv != identity.EventInitialSession || gotIdent == nil || gotIdent.Email != "alice@example.com" {
		t.Fatalf("initial event=%s ident=%+v", gotEv, gotIdent)
	}
}

func TestProvider_ChangePassword(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "alice@example.com", "oldpw"); err != nil {
		t.Fatalf("SignUp err=%v", err)
	}
	events := record(p)

	if err := p.ChangePassword(ctx, "wrong", "newpw"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("wrong current password err=%v", err)
	}
	if err := p.ChangePassword(ctx, "oldpw", "newpw"); err != nil {
		t.Fatalf("ChangePassword err=%v", err)
	}

	// Old credential dead, new one live.
	if _, err := p.SignIn(ctx, "alice@example.com", "oldpw"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := p.SignIn(ctx, "alice@example.com", "newpw"); err != nil {
		t.Fatalf("new password SignIn err=%v", err)
	}

	found := false
	for _, e := range *events {
		if e.ev == identity.EventUserUpdated {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected USER_UPDATED after password change")
	}
}

func TestProvider_ChangePassword_NoSession(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)

	err := p.ChangePassword(context.Background(), "a", "b")
	if !errors.Is(err, identity.ErrNoSession) {
		t.Fatalf("err=%v, want ErrNoSession", err)
	}
}

func TestProvider_IsolatedSignUpLeavesAmbientSessionAlone(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	admin, err := p.SignUp(ctx, "boss@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp err=%v", err)
	}
	events := record(p)

	iso, err := p.Isolated()
	if err != nil {
		t.Fatalf("Isolated err=%v", err)
	}
	created, err := iso.SignUp(ctx, "new@example.com", "welcome1")
	if err != nil {
		t.Fatalf("isolated SignUp err=%v", err)
	}
	if created.Subject == admin.Subject {
		t.Fatalf("isolated signup reused ambient subject")
	}
	if err := iso.Close(ctx); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if _, err := iso.SignUp(ctx, "late@example.com", "pw"); !errors.Is(err, identity.ErrNoSession) {
		t.Fatalf("signup after close err=%v", err)
	}

	// Only the INITIAL_SESSION from subscribing; no fanout from the
	// isolated session.
	if len(*events) != 1 {
		t.Fatalf("events=%d, want 1", len(*events))
	}

	// The account is real: it can sign in on the main surface.
	if _, err := p.SignIn(ctx, "new@example.com", "welcome1"); err != nil {
		t.Fatalf("SignIn for isolated account err=%v", err)
	}
}

func TestProvider_ValidateToken(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	ident, err := p.SignUp(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp err=%v", err)
	}

	got, err := p.ValidateToken(ident.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken err=%v", err)
	}
	if got.Subject != ident.Subject || got.Email != "alice@example.com" {
		t.Fatalf("got=%+v", got)
	}

	if _, err := p.ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestProvider_RefreshSession(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("SignUp err=%v", err)
	}
	events := record(p)

	if err := p.RefreshSession(); err != nil {
		t.Fatalf("RefreshSession err=%v", err)
	}

	var refreshed *domain.Identity
	for _, e := range *events {
		if e.ev == identity.EventTokenRefreshed {
			refreshed = e.ident
		}
	}
	if refreshed == nil || refreshed.AccessToken == "" {
		t.Fatalf("expected TOKEN_REFRESHED with a token")
	}

	// Refresh while signed out is a quiet no-op.
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut err=%v", err)
	}
	before := len(*events)
	if err := p.RefreshSession(); err != nil {
		t.Fatalf("RefreshSession signed out err=%v", err)
	}
	if len(*events) != before {
		t.Fatalf("refresh while signed out must not emit")
	}
}
