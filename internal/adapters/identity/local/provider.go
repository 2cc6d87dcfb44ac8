// Package local implements the identity-provider contract in-process.
//
// Accounts are credential records (bcrypt hashes) in a kvstore document;
// session tokens are HS256 JWTs. The provider keeps a single ambient session
// the way a browser-resident identity SDK does, and emits stream events to
// subscribers in the order state changes happen.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/platform/security"
	clockport "github.com/offroadmga/club-manager-api/internal/ports/out/clock"
	"github.com/offroadmga/club-manager-api/internal/ports/out/identity"
	"github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
)

const accountsKey = "auth_accounts"

type account struct {
	Subject      string `json:"subject"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// Provider is the in-process identity provider.
type Provider struct {
	kv     kvstore.Store
	hasher *security.Hasher
	tokens *security.TokenProvider
	clk    clockport.Clock

	// mu guards both session state and event emission so subscribers observe
	// events in the order the state changed.
	mu      sync.Mutex
	current *domain.Identity
	subs    map[int]identity.Callback
	nextSub int
}

func NewProvider(kv kvstore.Store, hasher *security.Hasher, tokens *security.TokenProvider, clk clockport.Clock) *Provider {
	return &Provider{
		kv:     kv,
		hasher: hasher,
		tokens: tokens,
		clk:    clk,
		subs:   make(map[int]identity.Callback),
	}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	acct, ok, err := p.findAccount(ctx, email)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, identity.ErrInvalidCredentials
	}
	if err := p.hasher.Compare(acct.PasswordHash, []byte(password)); err != nil {
		return domain.Identity{}, identity.ErrInvalidCredentials
	}

	ident, err := p.newIdentity(acct)
	if err != nil {
		return domain.Identity{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &ident
	p.emitLocked(identity.EventSignedIn, &ident)
	return ident, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	acct, err := p.register(ctx, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	ident, err := p.newIdentity(acct)
	if err != nil {
		return domain.Identity{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &ident
	p.emitLocked(identity.EventSignedUp, &ident)
	return ident, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	p.current = nil
	p.emitLocked(identity.EventSignedOut, nil)
	return nil
}

// Subscribe registers cb and immediately reports the current session via
// INITIAL_SESSION, so late subscribers converge without a side channel.
func (p *Provider) Subscribe(cb identity.Callback) identity.Unsubscribe {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = cb
	cur := p.current
	p.mu.Unlock()

	cb(identity.EventInitialSession, cur)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) Reauthenticate(ctx context.Context, currentPassword string) error {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	if cur == nil {
		return identity.ErrNoSession
	}
	acct, ok, err := p.findAccount(ctx, cur.Email)
	if err != nil {
		return err
	}
	if !ok {
		return identity.ErrInvalidCredentials
	}
	if err := p.hasher.Compare(acct.PasswordHash, []byte(currentPassword)); err != nil {
		return identity.ErrInvalidCredentials
	}
	return nil
}

func (p *Provider) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := p.Reauthenticate(ctx, currentPassword); err != nil {
		return err
	}

	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	if cur == nil {
		return identity.ErrNoSession
	}

	hash, err := p.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := p.updateAccount(ctx, cur.Email, func(a *account) { a.PasswordHash = hash }); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.Subject == cur.Subject {
		p.emitLocked(identity.EventUserUpdated, p.current)
	}
	return nil
}

func (p *Provider) Isolated() (identity.IsolatedProvider, error) {
	return &isolated{parent: p}, nil
}

// RefreshSession re-issues the current session's token and notifies
// subscribers with TOKEN_REFRESHED. No-op when signed out.
func (p *Provider) RefreshSession() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	token, err := p.tokens.Issue(string(p.current.Subject), p.current.Email, p.clk.Now())
	if err != nil {
		return err
	}
	refreshed := *p.current
	refreshed.AccessToken = token
	p.current = &refreshed
	p.emitLocked(identity.EventTokenRefreshed, &refreshed)
	return nil
}

// ValidateToken resolves a bearer token back to its identity. Used by the
// HTTP adapter's auth middleware.
func (p *Provider) ValidateToken(token string) (domain.Identity, error) {
	subject, email, err := p.tokens.Validate(token)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Subject: domain.SubjectID(subject), Email: email, AccessToken: token}, nil
}

// isolated is a detached secondary session over the same account records.
// It never touches the parent's ambient session or subscribers.
type isolated struct {
	parent *Provider

	mu      sync.Mutex
	current *domain.Identity
	closed  bool
}

func (s *isolated) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return domain.Identity{}, identity.ErrNoSession
	}

	acct, err := s.parent.register(ctx, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	ident, err := s.parent.newIdentity(acct)
	if err != nil {
		return domain.Identity{}, err
	}

	s.mu.Lock()
	s.current = &ident
	s.mu.Unlock()
	return ident, nil
}

func (s *isolated) Close(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.closed = true
	return nil
}

// emitLocked invokes every subscriber with the event. Callers hold p.mu,
// which is what keeps the stream ordered.
func (p *Provider) emitLocked(ev identity.Event, ident *domain.Identity) {
	for _, cb := range p.subs {
		cb(ev, ident)
	}
}

func (p *Provider) newIdentity(acct account) (domain.Identity, error) {
	token, err := p.tokens.Issue(acct.Subject, acct.Email, p.clk.Now())
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		Subject:     domain.SubjectID(acct.Subject),
		Email:       acct.Email,
		AccessToken: token,
	}, nil
}

// register creates a new account record. Serialized through the kvstore
// document write; duplicate emails fail with ErrAccountExists.
func (p *Provider) register(ctx context.Context, email, password string) (account, error) {
	hash, err := p.hasher.Hash([]byte(password))
	if err != nil {
		return account{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	accts, err := p.loadAccounts(ctx)
	if err != nil {
		return account{}, err
	}
	for _, a := range accts {
		if strings.EqualFold(a.Email, email) {
			return account{}, identity.ErrAccountExists
		}
	}
	acct := account{
		Subject:      uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	accts = append(accts, acct)
	if err := p.saveAccounts(ctx, accts); err != nil {
		return account{}, err
	}
	return acct, nil
}

func (p *Provider) findAccount(ctx context.Context, email string) (account, bool, error) {
	p.mu.Lock()
	accts, err := p.loadAccounts(ctx)
	p.mu.Unlock()
	if err != nil {
		return account{}, false, err
	}
	for _, a := range accts {
		if strings.EqualFold(a.Email, email) {
			return a, true, nil
		}
	}
	return account{}, false, nil
}

func (p *Provider) updateAccount(ctx context.Context, email string, mutate func(*account)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	accts, err := p.loadAccounts(ctx)
	if err != nil {
		return err
	}
	for i := range accts {
		if strings.EqualFold(accts[i].Email, email) {
			mutate(&accts[i])
			return p.saveAccounts(ctx, accts)
		}
	}
	return identity.ErrInvalidCredentials
}

func (p *Provider) loadAccounts(ctx context.Context) ([]account, error) {
	doc, ok, err := p.kv.Get(ctx, accountsKey)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var accts []account
	if err := json.Unmarshal(doc, &accts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accts, nil
}

func (p *Provider) saveAccounts(ctx context.Context, accts []account) error {
	doc, err := json.Marshal(accts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := p.kv.Set(ctx, accountsKey, doc); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}
