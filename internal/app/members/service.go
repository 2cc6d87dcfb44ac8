package members

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/offroadmga/club-manager-api/internal/domain"
	clockport "github.com/offroadmga/club-manager-api/internal/ports/out/clock"
	"github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

type Service struct {
	repo    memberrepo.Repository
	events  eventrepo.Repository
	finance financerepo.Repository
	garage  garagerepo.Repository
	clk     clockport.Clock

	newMemberID func() domain.MemberID
}

func NewService(repo memberrepo.Repository, events eventrepo.Repository, finance financerepo.Repository, garage garagerepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		finance: finance,
		garage:  garage,
		clk:     clk,
		newMemberID: func() domain.MemberID {
			return domain.MemberID(uuid.NewString())
		},
	}
}

// SetNewMemberIDForTest overrides member ID generation for deterministic
// tests. It should not be used in production code.
func (s *Service) SetNewMemberIDForTest(fn func() domain.MemberID) {
	if fn != nil {
		s.newMemberID = fn
	}
}

func (s *Service) ListMembers(ctx context.Context) ([]domain.Member, error) {
	ms, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomain(m))
	}
	return out, nil
}

func (s *Service) GetMember(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Member{}, storageError(err)
	}
	return toDomain(m), nil
}

// GetByIdentity resolves the member profile for an authenticated identity.
// Used by the session coordinator's profile fetch.
func (s *Service) GetByIdentity(ctx context.Context, subject domain.SubjectID) (domain.Member, error) {
	m, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Member{}, storageError(err)
	}
	return toDomain(m), nil
}

// ResolveLoginEmail maps a username to its account email. Misses are
// reported as invalid credentials so login cannot be used to probe
// usernames.
func (s *Service) ResolveLoginEmail(ctx context.Context, username string) (string, error) {
	m, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return "", &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "invalid username or password"}
		}
		return "", storageError(err)
	}
	return m.Email, nil
}

// CreateMember creates a member on behalf of an admin actor.
func (s *Service) CreateMember(ctx context.Context, actor Actor, in CreateMemberInput) (domain.Member, error) {
	if !actor.IsAdmin() {
		return domain.Member{}, unauthorized()
	}
	return s.CreateProfile(ctx, in)
}

// CreateProfile creates a member record with no actor check. It backs both
// the admin path and the coordinator's signup provisioning.
func (s *Service) CreateProfile(ctx context.Context, in CreateMemberInput) (domain.Member, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Member{}, validationError("name", "must be non-empty")
	}
	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		return domain.Member{}, validationError("email", err.Error())
	}
	username := domain.NormalizeUsername(in.Username)
	if username == "" {
		username = domain.UsernameFromEmail(email)
	}
	if username == "" {
		return domain.Member{}, validationError("username", "must be non-empty")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return domain.Member{}, validationError("role", "unknown role")
	}
	status := in.Status
	if status == "" {
		status = domain.MemberStatusActive
	}
	if !domain.ValidMemberStatus(status) {
		return domain.Member{}, validationError("status", "unknown status")
	}

	m := memberrepo.Member{
		ID:        s.newMemberID(),
		Subject:   in.Subject,
		Email:     email,
		Username:  username,
		Name:      name,
		Role:      role,
		Status:    status,
		JoinDate:  s.clk.Now(),
		BirthDate: cloneTimePtr(in.BirthDate),
		Avatar:    in.Avatar,
		Gender:    in.Gender,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		switch {
		case errors.Is(err, memberrepo.ErrDuplicateUsername):
			return domain.Member{}, &Error{Status: 409, Code: "DUPLICATE_USERNAME", Message: "username already exists"}
		case errors.Is(err, memberrepo.ErrDuplicateEmail):
			return domain.Member{}, &Error{Status: 409, Code: "DUPLICATE_EMAIL", Message: "email already exists"}
		}
		return domain.Member{}, storageError(err)
	}
	return toDomain(m), nil
}

// UpdateMember applies a shallow patch. The actor must be the member itself
// or an admin.
func (s *Service) UpdateMember(ctx context.Context, actor Actor, id domain.MemberID, in UpdateMemberInput) (domain.Member, error) {
	if actor.MemberID != id && !actor.IsAdmin() {
		return domain.Member{}, unauthorized()
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Member{}, storageError(err)
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.Member{}, validationError("name", "cannot be null")
		}
		name := domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return domain.Member{}, validationError("name", "must be non-empty")
		}
		m.Name = name
	}

	if in.Email.IsSpecified() {
		if in.Email.IsNull() {
			return domain.Member{}, validationError("email", "cannot be null")
		}
		email := strings.TrimSpace(in.Email.Value())
		if err := validateEmail(email); err != nil {
			return domain.Member{}, validationError("email", err.Error())
		}
		m.Email = email
	}

	if in.Username.IsSpecified() {
		if in.Username.IsNull() {
			return domain.Member{}, validationError("username", "cannot be null")
		}
		username := domain.NormalizeUsername(in.Username.Value())
		if username == "" {
			return domain.Member{}, validationError("username", "must be non-empty")
		}
		m.Username = username
	}

	if in.BirthDate.IsSpecified() {
		if in.BirthDate.IsNull() {
			m.BirthDate = nil
		} else {
			v := in.BirthDate.Value()
			m.BirthDate = &v
		}
	}
	if in.Avatar.IsSpecified() && !in.Avatar.IsNull() {
		m.Avatar = in.Avatar.Value()
	}
	if in.Gender.IsSpecified() && !in.Gender.IsNull() {
		m.Gender = in.Gender.Value()
	}

	if err := s.repo.Update(ctx, m); err != nil {
		switch {
		case errors.Is(err, memberrepo.ErrDuplicateUsername):
			return domain.Member{}, &Error{Status: 409, Code: "DUPLICATE_USERNAME", Message: "username already exists"}
		case errors.Is(err, memberrepo.ErrDuplicateEmail):
			return domain.Member{}, &Error{Status: 409, Code: "DUPLICATE_EMAIL", Message: "email already exists"}
		case errors.Is(err, memberrepo.ErrNotFound):
			return domain.Member{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Member{}, storageError(err)
	}
	return toDomain(m), nil
}

// UpdateStatus transitions a member between active and inactive. Admin only.
// An admin member's status can never become inactive; the call fails and the
// stored record is unchanged.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id domain.MemberID, status domain.MemberStatus) (domain.Member, error) {
	if !actor.IsAdmin() {
		return domain.Member{}, unauthorized()
	}
	if !domain.ValidMemberStatus(status) {
		return domain.Member{}, validationError("status", "unknown status")
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Member{}, storageError(err)
	}

	if m.Role == domain.RoleAdmin && status == domain.MemberStatusInactive {
		return domain.Member{}, &Error{
			Status:  409,
			Code:    "ADMIN_CANNOT_BE_DEACTIVATED",
			Message: "an admin member cannot be set inactive",
		}
	}

	m.Status = status
	if err := s.repo.Update(ctx, m); err != nil {
		return domain.Member{}, storageError(err)
	}
	return toDomain(m), nil
}

// DeleteMember removes a member record. Admin only. Deletion is denied while
// contribution records reference the member; attendance links and garage
// cars are cascade-removed so no orphan records survive.
func (s *Service) DeleteMember(ctx context.Context, actor Actor, id domain.MemberID) error {
	if !actor.IsAdmin() {
		return unauthorized()
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return nil // delete is idempotent
		}
		return storageError(err)
	}

	n, err := s.finance.CountContributionsByMember(ctx, id)
	if err != nil {
		return storageError(err)
	}
	if n > 0 {
		return &Error{
			Status:  409,
			Code:    "MEMBER_HAS_CONTRIBUTIONS",
			Message: "member has contribution records; remove them first",
			Details: map[string]any{"contributions": n},
		}
	}

	if err := s.events.RemoveAttendeeEverywhere(ctx, id); err != nil {
		return storageError(err)
	}
	if err := s.garage.DeleteByMember(ctx, id); err != nil {
		return storageError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError(err)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}

func unauthorized() *Error {
	return &Error{Status: 403, Code: "UNAUTHORIZED", Message: "operation not permitted for this actor"}
}

func validationError(field, msg string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: msg},
	}
}

func storageError(err error) *Error {
	return &Error{Status: 500, Code: "STORAGE_FAILURE", Message: err.Error()}
}

func toDomain(m memberrepo.Member) domain.Member {
	return domain.Member{
		ID:        m.ID,
		Subject:   m.Subject,
		Email:     m.Email,
		Username:  m.Username,
		Name:      m.Name,
		Role:      m.Role,
		Status:    m.Status,
		JoinDate:  m.JoinDate,
		BirthDate: cloneTimePtr(m.BirthDate),
		Avatar:    m.Avatar,
		Gender:    m.Gender,
	}
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
