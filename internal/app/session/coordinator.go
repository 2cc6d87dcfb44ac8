// Package session owns the single process-local authenticated session.
//
// The coordinator reconciles two inputs into one state machine: explicit
// commands (login, signup, logout) and the identity provider's asynchronous
// event stream. Every async continuation is tagged with the generation of the
// identity it was started for and discards itself if the generation has moved
// on, so a straggling profile fetch can never resurrect a session the user
// already left.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/offroadmga/club-manager-api/internal/app/members"
	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/identity"
	"github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
)

// cacheKey is the durable slot holding the last known identity so a restart
// can show a provisional session before the provider confirms.
const cacheKey = "auth_session"

// DefaultInitTimeout bounds how long the coordinator stays Loading when the
// provider never reports. Without it a silent provider would wedge the UI.
const DefaultInitTimeout = 5 * time.Second

type cachedIdentity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
}

// SignUpMetadata carries the profile fields collected at registration.
type SignUpMetadata struct {
	Username string
	Name     string
}

// CreateUserInput is the admin provisioning input.
type CreateUserInput struct {
	Email    string
	Password string
	Username string
	Name     string
	Role     domain.Role
	Status   domain.MemberStatus
	Gender   string
	Avatar   string
}

// Coordinator is the authoritative in-memory session. Construct once at
// process start; it lives for the process lifetime and is reset only by
// logout.
type Coordinator struct {
	provider identity.Provider
	members  *members.Service
	kv       kvstore.Store
	logger   *log.Logger

	initTimeout time.Duration

	mu        sync.Mutex
	state     State
	session   domain.Session
	gen       uint64
	initTimer *time.Timer
	subs      map[int]func(Snapshot)
	nextSub   int
	unsub     identity.Unsubscribe
}

func NewCoordinator(provider identity.Provider, membersSvc *members.Service, kv kvstore.Store, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		provider:    provider,
		members:     membersSvc,
		kv:          kv,
		logger:      logger,
		initTimeout: DefaultInitTimeout,
		state:       Uninitialized,
		subs:        make(map[int]func(Snapshot)),
	}
}

// SetInitTimeout overrides the Loading fallback timeout. Must be called
// before Start.
func (c *Coordinator) SetInitTimeout(d time.Duration) {
	if d > 0 {
		c.initTimeout = d
	}
}

// Start enters Loading, restores any cached identity as a provisional
// session, arms the init timeout and subscribes to the provider stream.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	c.state = Loading

	if cached, ok := c.loadCache(ctx); ok {
		// Provisional restore: the provider's first event settles it.
		ident := domain.Identity{Subject: domain.SubjectID(cached.Subject), Email: cached.Email}
		c.adoptIdentityLocked(ident)
	}

	c.initTimer = time.AfterFunc(c.initTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == Loading {
			c.logger.Printf("session: no provider event within %s, falling back to anonymous", c.initTimeout)
			c.toAnonymousLocked()
		}
	})
	c.mu.Unlock()

	c.unsub = c.provider.Subscribe(c.handleStreamEvent)
}

// Stop detaches from the provider stream and disarms the init timer.
func (c *Coordinator) Stop() {
	if c.unsub != nil {
		c.unsub()
	}
	c.mu.Lock()
	c.stopInitTimerLocked()
	c.mu.Unlock()
}

// Current returns a snapshot of the session state.
func (c *Coordinator) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// OnChange registers fn for state-change notifications. fn runs with the
// coordinator lock held and must not call back into the Coordinator;
// consume the Snapshot it receives instead.
func (c *Coordinator) OnChange(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Login authenticates identifier/password. An identifier without an email
// domain marker is treated as a username and resolved through the member
// store first. A member whose status is inactive never reaches
// Authenticated: the freshly created provider session is invalidated and the
// call fails with ACCOUNT_INACTIVE.
func (c *Coordinator) Login(ctx context.Context, identifier, password string) (domain.Identity, error) {
	email := identifier
	if !strings.Contains(identifier, "@") {
		resolved, err := c.members.ResolveLoginEmail(ctx, identifier)
		if err != nil {
			return domain.Identity{}, convertMembersError(err)
		}
		email = resolved
	}

	ident, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return domain.Identity{}, &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}
		}
		return domain.Identity{}, providerError(err)
	}
	// The provider emitted SIGNED_IN; the coordinator has already adopted a
	// provisional session for this identity.

	profile, err := c.ensureProfile(ctx, ident)
	if err != nil {
		return domain.Identity{}, err
	}

	if profile.Status == domain.MemberStatusInactive {
		if serr := c.provider.SignOut(ctx); serr != nil {
			c.logger.Printf("session: sign-out after inactive login failed: %v", serr)
		}
		return domain.Identity{}, &Error{Status: 403, Code: "ACCOUNT_INACTIVE", Message: "account is inactive"}
	}

	c.applyProfile(ident.Subject, profile)
	return ident, nil
}

// SignUp registers a provider account and the corresponding member record
// (role=member, status=active). Username defaults to the email local part.
func (c *Coordinator) SignUp(ctx context.Context, email, password string, meta SignUpMetadata) (domain.Identity, error) {
	ident, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrAccountExists) {
			return domain.Identity{}, &Error{Status: 409, Code: "ACCOUNT_EXISTS", Message: "user already exists"}
		}
		return domain.Identity{}, providerError(err)
	}

	name := meta.Name
	if name == "" {
		name = domain.UsernameFromEmail(email)
	}
	profile, err := c.members.CreateProfile(ctx, members.CreateMemberInput{
		Subject:  ident.Subject,
		Email:    email,
		Username: meta.Username,
		Name:     name,
		Role:     domain.RoleMember,
		Status:   domain.MemberStatusActive,
	})
	if err != nil {
		return domain.Identity{}, convertMembersError(err)
	}

	c.applyProfile(ident.Subject, profile)
	return ident, nil
}

// Logout clears the session. Local state is cleared unconditionally; a
// provider failure is logged but never traps the user in an authenticated
// state. Safe to call when already Anonymous.
func (c *Coordinator) Logout(ctx context.Context) {
	c.mu.Lock()
	if c.state == Anonymous {
		c.mu.Unlock()
		return
	}
	// Guarded transitional state: readers must not observe the old session
	// while the provider call is in flight. Bumping the generation also
	// kills any in-flight profile fetch.
	c.gen++
	c.state = Loading
	c.session = domain.Session{}
	c.notifyLocked()
	c.mu.Unlock()

	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Printf("session: provider sign-out failed: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Anonymous {
		c.toAnonymousLocked()
	}
}

// CreateUserAsAdmin provisions a new account plus member record without
// disturbing the caller's own session: the provider work happens on an
// isolated secondary session that is discarded afterward.
func (c *Coordinator) CreateUserAsAdmin(ctx context.Context, in CreateUserInput) (domain.Member, error) {
	if _, err := c.requireAdmin(); err != nil {
		return domain.Member{}, err
	}

	iso, err := c.provider.Isolated()
	if err != nil {
		return domain.Member{}, providerError(err)
	}
	defer func() {
		if cerr := iso.Close(ctx); cerr != nil {
			c.logger.Printf("session: closing isolated provider session failed: %v", cerr)
		}
	}()

	ident, err := iso.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrAccountExists) {
			return domain.Member{}, &Error{Status: 409, Code: "ACCOUNT_EXISTS", Message: "user already exists"}
		}
		return domain.Member{}, providerError(err)
	}

	profile, err := c.members.CreateProfile(ctx, members.CreateMemberInput{
		Subject:  ident.Subject,
		Email:    in.Email,
		Username: in.Username,
		Name:     in.Name,
		Role:     in.Role,
		Status:   in.Status,
		Gender:   in.Gender,
		Avatar:   in.Avatar,
	})
	if err != nil {
		return domain.Member{}, convertMembersError(err)
	}
	return profile, nil
}

// Reauthenticate re-verifies the current password with the provider.
func (c *Coordinator) Reauthenticate(ctx context.Context, currentPassword string) error {
	if err := c.requireAuthenticated(); err != nil {
		return err
	}
	if err := c.provider.Reauthenticate(ctx, currentPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "invalid current password"}
		}
		return providerError(err)
	}
	return nil
}

// ChangePassword re-authenticates and replaces the password.
func (c *Coordinator) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := c.requireAuthenticated(); err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid password",
			Details: map[string]any{"password": "must be at least 6 characters"},
		}
	}
	if err := c.provider.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "invalid current password"}
		}
		return providerError(err)
	}
	return nil
}

// handleStreamEvent processes provider events in emission order.
func (c *Coordinator) handleStreamEvent(ev identity.Event, ident *domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Any stream activity proves the provider is alive.
	c.stopInitTimerLocked()

	switch ev {
	case identity.EventSignedIn, identity.EventSignedUp:
		if ident != nil {
			c.adoptIdentityLocked(*ident)
		}
	case identity.EventInitialSession:
		if ident == nil {
			// No active identity: a cached provisional session is stale.
			c.toAnonymousLocked()
			return
		}
		c.adoptIdentityLocked(*ident)
	case identity.EventTokenRefreshed, identity.EventUserUpdated:
		if ident == nil {
			return
		}
		if c.state == Authenticated && c.session.Identity.Subject == ident.Subject {
			// Routine rotation: replace bare identity fields, keep the
			// cached profile, skip the refetch.
			c.session.Identity = *ident
			c.saveCacheLocked()
			c.notifyLocked()
			return
		}
		c.adoptIdentityLocked(*ident)
	case identity.EventSignedOut:
		c.toAnonymousLocked()
	}
}

// adoptIdentityLocked enters Authenticated for ident, provisionally at first,
// and starts the generation-tagged profile fetch. A fresh subject drops the
// old profile; the same subject keeps it while the fetch refreshes it.
func (c *Coordinator) adoptIdentityLocked(ident domain.Identity) {
	c.gen++
	gen := c.gen

	if c.session.Identity.Subject != ident.Subject {
		c.session.Profile = nil
	}
	c.session.Identity = ident
	c.state = Authenticated
	c.saveCacheLocked()
	c.notifyLocked()

	go c.fetchProfile(gen, ident)
}

// fetchProfile resolves the full member record for ident. The result is
// applied only if gen is still current; otherwise the continuation discards
// itself.
func (c *Coordinator) fetchProfile(gen uint64, ident domain.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := c.members.GetByIdentity(ctx, ident.Subject)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state != Authenticated {
		return
	}
	if err != nil {
		// Keep the last known good profile; a background refresh failure
		// must not take the session down.
		c.logger.Printf("session: profile fetch for %s failed: %v", ident.Subject, err)
		return
	}
	c.session.Profile = &profile
	c.notifyLocked()
}

// applyProfile installs a freshly fetched profile if the identity is still
// current.
func (c *Coordinator) applyProfile(subject domain.SubjectID, profile domain.Member) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Authenticated || c.session.Identity.Subject != subject {
		return
	}
	c.session.Profile = &profile
	c.notifyLocked()
}

// ensureProfile loads the member record for ident, creating a default one
// when the account exists at the provider but was never provisioned locally.
func (c *Coordinator) ensureProfile(ctx context.Context, ident domain.Identity) (domain.Member, error) {
	profile, err := c.members.GetByIdentity(ctx, ident.Subject)
	if err == nil {
		return profile, nil
	}
	ae := (*members.Error)(nil)
	if !errors.As(err, &ae) || ae.Code != "NOT_FOUND" {
		return domain.Member{}, convertMembersError(err)
	}

	c.logger.Printf("session: no member profile for %s, creating default", ident.Subject)
	created, cerr := c.members.CreateProfile(ctx, members.CreateMemberInput{
		Subject:  ident.Subject,
		Email:    ident.Email,
		Username: domain.UsernameFromEmail(ident.Email),
		Name:     domain.UsernameFromEmail(ident.Email),
		Role:     domain.RoleMember,
		Status:   domain.MemberStatusActive,
	})
	if cerr != nil {
		return domain.Member{}, convertMembersError(cerr)
	}
	return created, nil
}

func (c *Coordinator) requireAuthenticated() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Authenticated {
		return &Error{Status: 401, Code: "UNAUTHORIZED", Message: "no active session"}
	}
	return nil
}

func (c *Coordinator) requireAdmin() (domain.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Authenticated || c.session.Profile == nil {
		return domain.Member{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "no active session"}
	}
	if c.session.Profile.Role != domain.RoleAdmin {
		return domain.Member{}, &Error{Status: 403, Code: "UNAUTHORIZED", Message: "admin role required"}
	}
	return *c.session.Profile, nil
}

func (c *Coordinator) toAnonymousLocked() {
	c.gen++
	c.state = Anonymous
	c.session = domain.Session{}
	c.clearCacheLocked()
	c.notifyLocked()
}

func (c *Coordinator) stopInitTimerLocked() {
	if c.initTimer != nil {
		c.initTimer.Stop()
		c.initTimer = nil
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, Session: c.session}
	if c.session.Profile != nil {
		p := *c.session.Profile
		snap.Session.Profile = &p
	}
	return snap
}

func (c *Coordinator) notifyLocked() {
	snap := c.snapshotLocked()
	for _, fn := range c.subs {
		fn(snap)
	}
}

func (c *Coordinator) loadCache(ctx context.Context) (cachedIdentity, bool) {
	doc, ok, err := c.kv.Get(ctx, cacheKey)
	if err != nil || !ok {
		return cachedIdentity{}, false
	}
	var cached cachedIdentity
	if err := json.Unmarshal(doc, &cached); err != nil || cached.Subject == "" {
		return cachedIdentity{}, false
	}
	return cached, true
}

func (c *Coordinator) saveCacheLocked() {
	doc, err := json.Marshal(cachedIdentity{
		Subject: string(c.session.Identity.Subject),
		Email:   c.session.Identity.Email,
	})
	if err != nil {
		return
	}
	if err := c.kv.Set(context.Background(), cacheKey, doc); err != nil {
		c.logger.Printf("session: caching identity failed: %v", err)
	}
}

func (c *Coordinator) clearCacheLocked() {
	if err := c.kv.Delete(context.Background(), cacheKey); err != nil {
		c.logger.Printf("session: clearing cached identity failed: %v", err)
	}
}

func convertMembersError(err error) error {
	ae := (*members.Error)(nil)
	if errors.As(err, &ae) {
		return &Error{Status: ae.Status, Code: ae.Code, Message: ae.Message, Details: ae.Details}
	}
	return &Error{Status: 500, Code: "STORAGE_FAILURE", Message: err.Error()}
}

func providerError(err error) *Error {
	return &Error{Status: 502, Code: "PROVIDER_FAILURE", Message: err.Error()}
}
