package events

import (
	"context"
	"errors"
	"testing"
	"time"

	memeventrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/eventrepo"
	"github.com/offroadmga/club-manager-api/internal/domain"
)

func activeMember(id domain.MemberID) Actor {
	return Actor{MemberID: id, Role: domain.RoleMember, Status: domain.MemberStatusActive}
}

func activeAdmin(id domain.MemberID) Actor {
	return Actor{MemberID: id, Role: domain.RoleAdmin, Status: domain.MemberStatusActive}
}

func wantAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v, want %s %d", err, code, status)
	}
}

func mustCreate(t *testing.T, svc *Service, actor Actor, in CreateEventInput) domain.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("CreateEvent err=%v", err)
	}
	return e
}

func TestService_CreateEvent_OfficialMeetupRequiresAdmin(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	in := CreateEventInput{
		Title: "Annual general meetup",
		Date:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Type:  domain.EventTypeClubOfficialMeetup,
	}
	_, err := svc.CreateEvent(context.Background(), activeMember("m-1"), in)
	wantAppError(t, err, 403, "UNAUTHORIZED")

	if _, err := svc.CreateEvent(context.Background(), activeAdmin("a-1"), in); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestService_CreateEvent_AnyMemberForRegularTypes(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	for _, typ := range []domain.EventType{
		domain.EventTypeSoftTrail,
		domain.EventTypeHardTrail,
		domain.EventTypeMembersMeetup,
	} {
		if _, err := svc.CreateEvent(context.Background(), activeMember("m-1"), CreateEventInput{
			Title: "Run " + string(typ),
			Date:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
			Type:  typ,
		}); err != nil {
			t.Fatalf("create %s: %v", typ, err)
		}
	}
}

func TestService_CreateEvent_RejectsUnknownType(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	_, err := svc.CreateEvent(context.Background(), activeMember("m-1"), CreateEventInput{
		Title: "Mystery",
		Type:  domain.EventType("pool-party"),
	})
	wantAppError(t, err, 422, "VALIDATION_ERROR")
}

func TestService_JoinEvent_Idempotent(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	e := mustCreate(t, svc, activeMember("m-1"), CreateEventInput{
		Title: "Trail run",
		Date:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Type:  domain.EventTypeSoftTrail,
	})

	res, err := svc.JoinEvent(context.Background(), activeMember("m-1"), e.ID)
	if err != nil || res.AlreadyJoined {
		t.Fatalf("first join: alreadyJoined=%v err=%v", res.AlreadyJoined, err)
	}
	res, err = svc.JoinEvent(context.Background(), activeMember("m-1"), e.ID)
	if err != nil || !res.AlreadyJoined {
		t.Fatalf("second join: alreadyJoined=%v err=%v", res.AlreadyJoined, err)
	}
	if len(res.Event.Attendees) != 1 {
		t.Fatalf("attendees=%d, want 1", len(res.Event.Attendees))
	}
}

func TestService_JoinEvent_InactiveMemberDenied(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	e := mustCreate(t, svc, activeMember("m-1"), CreateEventInput{
		Title: "Trail run",
		Date:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Type:  domain.EventTypeSoftTrail,
	})

	inactive := Actor{MemberID: "m-2", Role: domain.RoleMember, Status: domain.MemberStatusInactive}
	_, err := svc.JoinEvent(context.Background(), inactive, e.ID)
	wantAppError(t, err, 403, "ACCOUNT_INACTIVE")
}

func TestService_LeaveEvent_Idempotent(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	e := mustCreate(t, svc, activeMember("m-1"), CreateEventInput{
		Title: "Trail run",
		Date:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Type:  domain.EventTypeSoftTrail,
	})

	if _, err := svc.JoinEvent(context.Background(), activeMember("m-1"), e.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	res, err := svc.LeaveEvent(context.Background(), activeMember("m-1"), e.ID)
	if err != nil || !res.WasAttendee {
		t.Fatalf("first leave: wasAttendee=%v err=%v", res.WasAttendee, err)
	}
	res, err = svc.LeaveEvent(context.Background(), activeMember("m-1"), e.ID)
	if err != nil || res.WasAttendee {
		t.Fatalf("second leave: wasAttendee=%v err=%v", res.WasAttendee, err)
	}
	if len(res.Event.Attendees) != 0 {
		t.Fatalf("attendees=%d, want 0", len(res.Event.Attendees))
	}
}

func TestService_JoinEvent_UnknownEvent(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	_, err := svc.JoinEvent(context.Background(), activeMember("m-1"), "missing")
	wantAppError(t, err, 404, "NOT_FOUND")
}

func TestService_UpdateEvent_AdminOnlyAndPreservesAttendance(t *testing.T) {
	t.Parallel()
	svc := NewService(memeventrepo.NewRepo())

	e := mustCreate(t, svc, activeMember("m-1"), CreateEventInput{
		Title: "Trail run",
		Date:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Type:  domain.EventTypeSoftTrail,
	})
	if _, err := svc.JoinEvent(context.Background(), activeMember("m-1"), e.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err := svc.UpdateEvent(context.Background(), activeMember("m-1"), e.ID, UpdateEventInput{
		Title: Some("Renamed"),
	})
	wantAppError(t, err, 403, "UNAUTHORIZED")

	got, err := svc.UpdateEvent(context.Background(), activeAdmin("a-1"), e.ID, UpdateEventInput{
		Title: Some("Renamed"),
	})
	if err != nil || got.Title != "Renamed" {
		t.Fatalf("admin update: title=%q err=%v", got.Title, err)
	}
	if len(got.Attendees) != 1 {
		t.Fatalf("attendance lost on update: %d", len(got.Attendees))
	}
}
