package members

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/offroadmga/club-manager-api/internal/adapters/memory/clock"
	memeventrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/eventrepo"
	memfinancerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/financerepo"
	memgaragerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/garagerepo"
	memmemberrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/memberrepo"
	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
)

type fixture struct {
	svc     *Service
	events  eventrepo.Repository
	finance financerepo.Repository
	garage  garagerepo.Repository
	clk     *memclock.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := memclock.NewManualClock(time.Unix(1000, 0).UTC())
	events := memeventrepo.NewRepo()
	finance := memfinancerepo.NewRepo()
	garage := memgaragerepo.NewRepo()
	return &fixture{
		svc:     NewService(memmemberrepo.NewRepo(), events, finance, garage, clk),
		events:  events,
		finance: finance,
		garage:  garage,
		clk:     clk,
	}
}

func adminActor() Actor                    { return Actor{MemberID: "admin-id", Role: domain.RoleAdmin} }
func memberActor(id domain.MemberID) Actor { return Actor{MemberID: id, Role: domain.RoleMember} }

func wantAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v, want %s %d", err, code, status)
	}
}

func TestService_CreateProfile_Defaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Subject: "sub-1",
		Email:   "Alice.Smith@example.com",
		Name:    "  Alice   Smith ",
	})
	if err != nil {
		t.Fatalf("CreateProfile err=%v", err)
	}
	if m.Name != "Alice Smith" {
		t.Fatalf("name=%q", m.Name)
	}
	if m.Username != "alice.smith" {
		t.Fatalf("username defaulted to %q, want email local part", m.Username)
	}
	if m.Role != domain.RoleMember || m.Status != domain.MemberStatusActive {
		t.Fatalf("defaults: role=%s status=%s", m.Role, m.Status)
	}
	if !m.JoinDate.Equal(time.Unix(1000, 0).UTC()) {
		t.Fatalf("joinDate=%v", m.JoinDate)
	}
}

func TestService_CreateProfile_DuplicateUsername(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if _, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "Rider", Name: "A",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// Case only differs; still a collision.
	_, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "b@example.com", Username: "rider", Name: "B",
	})
	wantAppError(t, err, 409, "DUPLICATE_USERNAME")
}

func TestService_CreateProfile_DuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if _, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "A@example.com", Username: "b", Name: "B",
	})
	wantAppError(t, err, 409, "DUPLICATE_EMAIL")
}

func TestService_CreateMember_RequiresAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateMember(context.Background(), memberActor("m-1"), CreateMemberInput{
		Email: "a@example.com", Name: "A",
	})
	wantAppError(t, err, 403, "UNAUTHORIZED")
}

func TestService_ResolveLoginEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if _, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "alice@example.com", Username: "alice", Name: "Alice",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	email, err := f.svc.ResolveLoginEmail(context.Background(), "alice")
	if err != nil || email != "alice@example.com" {
		t.Fatalf("email=%q err=%v", email, err)
	}

	// Unknown usernames map to invalid credentials, not not-found, so login
	// cannot probe the directory.
	_, err = f.svc.ResolveLoginEmail(context.Background(), "nobody")
	wantAppError(t, err, 401, "INVALID_CREDENTIALS")
}

func TestService_UpdateMember_SelfOrAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A different non-admin member cannot touch the record.
	_, err = f.svc.UpdateMember(context.Background(), memberActor("other"), m.ID, UpdateMemberInput{
		Name: Some("Hacked"),
	})
	wantAppError(t, err, 403, "UNAUTHORIZED")

	// Self can.
	got, err := f.svc.UpdateMember(context.Background(), memberActor(m.ID), m.ID, UpdateMemberInput{
		Name: Some("Alice Updated"),
	})
	if err != nil || got.Name != "Alice Updated" {
		t.Fatalf("self update: name=%q err=%v", got.Name, err)
	}

	// Admin can too.
	got, err = f.svc.UpdateMember(context.Background(), adminActor(), m.ID, UpdateMemberInput{
		Gender: Some("f"),
	})
	if err != nil || got.Gender != "f" {
		t.Fatalf("admin update: gender=%q err=%v", got.Gender, err)
	}
	// Unspecified fields survive the patch.
	if got.Name != "Alice Updated" {
		t.Fatalf("patch clobbered name: %q", got.Name)
	}
}

func TestService_UpdateMember_BirthDateTriState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bd := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)
	got, err := f.svc.UpdateMember(context.Background(), memberActor(m.ID), m.ID, UpdateMemberInput{
		BirthDate: Some(bd),
	})
	if err != nil || got.BirthDate == nil || !got.BirthDate.Equal(bd) {
		t.Fatalf("set birthDate: %+v err=%v", got.BirthDate, err)
	}

	// Explicit null clears; unspecified would have kept it.
	got, err = f.svc.UpdateMember(context.Background(), memberActor(m.ID), m.ID, UpdateMemberInput{
		BirthDate: Null[time.Time](),
	})
	if err != nil || got.BirthDate != nil {
		t.Fatalf("clear birthDate: %+v err=%v", got.BirthDate, err)
	}
}

func TestService_UpdateStatus_AdminCannotBeDeactivated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "boss@example.com", Username: "boss", Name: "Boss", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.UpdateStatus(context.Background(), adminActor(), m.ID, domain.MemberStatusInactive)
	wantAppError(t, err, 409, "ADMIN_CANNOT_BE_DEACTIVATED")

	// The stored record is untouched.
	got, err := f.svc.GetMember(context.Background(), m.ID)
	if err != nil || got.Status != domain.MemberStatusActive {
		t.Fatalf("status=%s err=%v", got.Status, err)
	}
}

func TestService_UpdateStatus_RequiresAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.svc.UpdateStatus(context.Background(), memberActor(m.ID), m.ID, domain.MemberStatusInactive)
	wantAppError(t, err, 403, "UNAUTHORIZED")
}

func TestService_DeleteMember_DeniedWithContributions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.finance.AddContribution(context.Background(), financerepo.Contribution{
		ID: "c-1", MemberID: m.ID, Date: time.Unix(2000, 0).UTC(), Amount: 50,
	}); err != nil {
		t.Fatalf("AddContribution: %v", err)
	}

	err = f.svc.DeleteMember(context.Background(), adminActor(), m.ID)
	wantAppError(t, err, 409, "MEMBER_HAS_CONTRIBUTIONS")

	if _, err := f.svc.GetMember(context.Background(), m.ID); err != nil {
		t.Fatalf("member must survive denied delete: %v", err)
	}
}

func TestService_DeleteMember_CascadesAttendance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.events.Create(context.Background(), eventrepo.Event{
		ID: "e-1", Title: "Run", Date: time.Unix(2000, 0).UTC(), Type: domain.EventTypeSoftTrail,
	}); err != nil {
		t.Fatalf("event create: %v", err)
	}
	if _, err := f.events.AddAttendee(context.Background(), "e-1", m.ID); err != nil {
		t.Fatalf("AddAttendee: %v", err)
	}

	if err := f.svc.DeleteMember(context.Background(), adminActor(), m.ID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}

	e, err := f.events.GetByID(context.Background(), "e-1")
	if err != nil {
		t.Fatalf("event reload: %v", err)
	}
	for _, a := range e.Attendees {
		if a == m.ID {
			t.Fatalf("attendance edge survived member delete")
		}
	}

	// Idempotent: the second delete is a no-op.
	if err := f.svc.DeleteMember(context.Background(), adminActor(), m.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestService_DeleteMember_CascadesGarage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.svc.CreateProfile(context.Background(), CreateMemberInput{
		Email: "a@example.com", Username: "a", Name: "A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.garage.Create(context.Background(), garagerepo.Car{
		ID: "car-1", MemberID: m.ID, Make: "Ford", Model: "Mustang", Year: 1969,
	}); err != nil {
		t.Fatalf("car create: %v", err)
	}

	if err := f.svc.DeleteMember(context.Background(), adminActor(), m.ID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}

	cs, err := f.garage.ListByMember(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("garage reload: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("garage cars survived member delete: %d", len(cs))
	}
}

func TestService_DeleteMember_RequiresAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.svc.DeleteMember(context.Background(), memberActor("m-1"), "m-2")
	wantAppError(t, err, 403, "UNAUTHORIZED")
}
