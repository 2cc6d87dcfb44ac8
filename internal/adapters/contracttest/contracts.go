// Package contracttest holds behavioral suites every repository backing must
// satisfy. Adapter packages run these against their own constructors, so the
// memory, kv and postgres implementations are held to one contract.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/offroadmga/club-manager-api/internal/domain"
	eventrepoport "github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
	financerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
	garagerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
	kvstoreport "github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
	memberrepoport "github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

type CleanupFunc = func()

type MemberRepoFactory func(t *testing.T) (memberrepoport.Repository, CleanupFunc)
type EventRepoFactory func(t *testing.T) (eventrepoport.Repository, CleanupFunc)
type FinanceRepoFactory func(t *testing.T) (financerepoport.Repository, CleanupFunc)
type GarageRepoFactory func(t *testing.T) (garagerepoport.Repository, CleanupFunc)
type KVStoreFactory func(t *testing.T) (kvstoreport.Store, CleanupFunc)

func RunKVStore(t *testing.T, newStore KVStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, ok, err := store.Get(ctx, "absent"); err != nil || ok {
		t.Fatalf("Get absent: ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k1", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	doc, ok, err := store.Get(ctx, "k1")
	if err != nil || !ok || string(doc) != `{"v":1}` {
		t.Fatalf("Get after Set: ok=%v err=%v doc=%q", ok, err, string(doc))
	}

	// Whole-document replace.
	if err := store.Set(ctx, "k1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	doc, _, _ = store.Get(ctx, "k1")
	if string(doc) != `{"v":2}` {
		t.Fatalf("expected replaced doc, got %q", string(doc))
	}

	// Delete is idempotent.
	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k1"); ok {
		t.Fatalf("expected key gone after delete")
	}
}

func RunMemberRepo(t *testing.T, newRepo MemberRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.MemberID(uuid.NewString())
	if err := repo.Create(ctx, memberrepoport.Member{
		ID:       aID,
		Subject:  domain.SubjectID("sub-a"),
		Email:    "alice@example.com",
		Username: "alice",
		Name:     "Alice Johnson",
		Role:     domain.RoleAdmin,
		Status:   domain.MemberStatusActive,
		JoinDate: now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := repo.GetByID(ctx, aID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := repo.GetBySubject(ctx, domain.SubjectID("sub-a")); err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if m, err := repo.GetByUsername(ctx, "alice"); err != nil || m.ID != aID {
		t.Fatalf("GetByUsername: id=%v err=%v", m.ID, err)
	}

	// Username uniqueness is case-insensitive.
	if err := repo.Create(ctx, memberrepoport.Member{
		ID:       domain.MemberID(uuid.NewString()),
		Subject:  domain.SubjectID("sub-b"),
		Email:    "other@example.com",
		Username: "alice",
		Name:     "Impostor",
		Role:     domain.RoleMember,
		Status:   domain.MemberStatusActive,
		JoinDate: now,
	}); !errors.Is(err, memberrepoport.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	// Email uniqueness, case-insensitive.
	if err := repo.Create(ctx, memberrepoport.Member{
		ID:       domain.MemberID(uuid.NewString()),
		Subject:  domain.SubjectID("sub-c"),
		Email:    "ALICE@example.com",
		Username: "alice2",
		Name:     "Impostor",
		Role:     domain.RoleMember,
		Status:   domain.MemberStatusActive,
		JoinDate: now,
	}); !errors.Is(err, memberrepoport.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Failed creates leave the collection untouched.
	if ms, err := repo.List(ctx); err != nil || len(ms) != 1 {
		t.Fatalf("List after failed creates: n=%d err=%v", len(ms), err)
	}

	bID := domain.MemberID(uuid.NewString())
	if err := repo.Create(ctx, memberrepoport.Member{
		ID:       bID,
		Subject:  domain.SubjectID("sub-b"),
		Email:    "bob@example.com",
		Username: "bob",
		Name:     "Bob",
		Role:     domain.RoleMember,
		Status:   domain.MemberStatusInactive,
		JoinDate: now,
	}); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	// Update re-checks uniqueness excluding the record itself.
	a, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("reload a: %v", err)
	}
	a.Name = "Alice J."
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update same username: %v", err)
	}
	b, _ := repo.GetByID(ctx, bID)
	b.Username = "alice"
	if err := repo.Update(ctx, b); !errors.Is(err, memberrepoport.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername on update, got %v", err)
	}
	if got, _ := repo.GetByID(ctx, bID); got.Username != "bob" {
		t.Fatalf("failed update must not persist, got username %q", got.Username)
	}

	// Delete is idempotent.
	if err := repo.Delete(ctx, bID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, bID); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if _, err := repo.GetByID(ctx, bID); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func RunEventRepo(t *testing.T, newRepo EventRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	eID := domain.EventID(uuid.NewString())
	if err := repo.Create(ctx, eventrepoport.Event{
		ID:       eID,
		Title:    "Spring trail run",
		Date:     date,
		Location: "Ridge staging area",
		Type:     domain.EventTypeSoftTrail,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.GetByID(ctx, eID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := repo.GetByID(ctx, domain.EventID(uuid.NewString())); !errors.Is(err, eventrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mA := domain.MemberID(uuid.NewString())
	mB := domain.MemberID(uuid.NewString())

	created, err := repo.AddAttendee(ctx, eID, mA)
	if err != nil || !created {
		t.Fatalf("AddAttendee first: created=%v err=%v", created, err)
	}
	created, err = repo.AddAttendee(ctx, eID, mA)
	if err != nil || created {
		t.Fatalf("AddAttendee repeat must be a no-op: created=%v err=%v", created, err)
	}
	if _, err := repo.AddAttendee(ctx, eID, mB); err != nil {
		t.Fatalf("AddAttendee b: %v", err)
	}

	e, err := repo.GetByID(ctx, eID)
	if err != nil || len(e.Attendees) != 2 {
		t.Fatalf("expected 2 attendees, got %d err=%v", len(e.Attendees), err)
	}

	// Event field updates must not disturb the attendee set.
	e.Title = "Spring trail run (rescheduled)"
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	e, _ = repo.GetByID(ctx, eID)
	if len(e.Attendees) != 2 {
		t.Fatalf("attendees lost on update: %d", len(e.Attendees))
	}

	removed, err := repo.RemoveAttendee(ctx, eID, mA)
	if err != nil || !removed {
		t.Fatalf("RemoveAttendee: removed=%v err=%v", removed, err)
	}
	removed, err = repo.RemoveAttendee(ctx, eID, mA)
	if err != nil || removed {
		t.Fatalf("RemoveAttendee repeat must be a no-op: removed=%v err=%v", removed, err)
	}

	// Cascade helper strips the member from every event.
	e2ID := domain.EventID(uuid.NewString())
	if err := repo.Create(ctx, eventrepoport.Event{
		ID:    e2ID,
		Title: "Meetup",
		Date:  date.AddDate(0, 1, 0),
		Type:  domain.EventTypeMembersMeetup,
	}); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if _, err := repo.AddAttendee(ctx, e2ID, mB); err != nil {
		t.Fatalf("AddAttendee second: %v", err)
	}
	if err := repo.RemoveAttendeeEverywhere(ctx, mB); err != nil {
		t.Fatalf("RemoveAttendeeEverywhere: %v", err)
	}
	for _, id := range []domain.EventID{eID, e2ID} {
		got, _ := repo.GetByID(ctx, id)
		for _, a := range got.Attendees {
			if a == mB {
				t.Fatalf("member still attending event %s", id)
			}
		}
	}
}

func RunFinanceRepo(t *testing.T, newRepo FinanceRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mA := domain.MemberID(uuid.NewString())
	mB := domain.MemberID(uuid.NewString())

	c1 := domain.ContributionID(uuid.NewString())
	for _, c := range []financerepoport.Contribution{
		{ID: c1, MemberID: mA, Date: date, Amount: 50},
		{ID: domain.ContributionID(uuid.NewString()), MemberID: mA, Date: date.AddDate(0, 1, 0), Amount: 25},
		{ID: domain.ContributionID(uuid.NewString()), MemberID: mB, Date: date, Amount: 100},
	} {
		if err := repo.AddContribution(ctx, c); err != nil {
			t.Fatalf("AddContribution: %v", err)
		}
	}

	all, err := repo.ListContributions(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListContributions: n=%d err=%v", len(all), err)
	}
	byA, err := repo.ListContributionsByMember(ctx, mA)
	if err != nil || len(byA) != 2 {
		t.Fatalf("ListContributionsByMember: n=%d err=%v", len(byA), err)
	}
	if n, err := repo.CountContributionsByMember(ctx, mA); err != nil || n != 2 {
		t.Fatalf("CountContributionsByMember: n=%d err=%v", n, err)
	}

	if err := repo.RemoveContribution(ctx, c1); err != nil {
		t.Fatalf("RemoveContribution: %v", err)
	}
	if err := repo.RemoveContribution(ctx, c1); err != nil {
		t.Fatalf("RemoveContribution absent: %v", err)
	}
	if n, _ := repo.CountContributionsByMember(ctx, mA); n != 1 {
		t.Fatalf("expected 1 contribution after removal, got %d", n)
	}

	if err := repo.AddExpense(ctx, financerepoport.Expense{
		ID:          domain.ExpenseID(uuid.NewString()),
		Date:        date,
		Description: "Trail permits",
		Amount:      120,
	}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if xs, err := repo.ListExpenses(ctx); err != nil || len(xs) != 1 {
		t.Fatalf("ListExpenses: n=%d err=%v", len(xs), err)
	}
}

func RunGarageRepo(t *testing.T, newRepo GarageRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	mA := domain.MemberID(uuid.NewString())
	mB := domain.MemberID(uuid.NewString())

	c1 := domain.CarID(uuid.NewString())
	for _, c := range []garagerepoport.Car{
		{ID: c1, MemberID: mA, Make: "Ford", Model: "Mustang", Year: 1969, Description: "Fully restored"},
		{ID: domain.CarID(uuid.NewString()), MemberID: mA, Make: "Land Rover", Model: "Defender", Year: 1995},
		{ID: domain.CarID(uuid.NewString()), MemberID: mB, Make: "Jeep", Model: "Wrangler", Year: 2020},
	} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.Create(ctx, garagerepoport.Car{ID: c1, MemberID: mA, Make: "Ford", Model: "Mustang"}); !errors.Is(err, garagerepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, c1)
	if err != nil || got.Make != "Ford" || got.MemberID != mA {
		t.Fatalf("GetByID: car=%+v err=%v", got, err)
	}
	if _, err := repo.GetByID(ctx, domain.CarID(uuid.NewString())); !errors.Is(err, garagerepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("List: n=%d err=%v", len(all), err)
	}
	byA, err := repo.ListByMember(ctx, mA)
	if err != nil || len(byA) != 2 {
		t.Fatalf("ListByMember: n=%d err=%v", len(byA), err)
	}

	got.Description = "Sold as project car"
	got.Year = 1970
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u, _ := repo.GetByID(ctx, c1); u.Year != 1970 || u.Description != "Sold as project car" {
		t.Fatalf("Update not persisted: %+v", u)
	}
	if err := repo.Update(ctx, garagerepoport.Car{ID: domain.CarID(uuid.NewString()), MemberID: mA, Make: "X", Model: "Y"}); !errors.Is(err, garagerepoport.ErrNotFound) {
		t.Fatalf("Update absent: expected ErrNotFound, got %v", err)
	}

	// Delete is idempotent.
	if err := repo.Delete(ctx, c1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, c1); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if _, err := repo.GetByID(ctx, c1); !errors.Is(err, garagerepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// DeleteByMember clears one member's garage and nobody else's.
	if err := repo.DeleteByMember(ctx, mA); err != nil {
		t.Fatalf("DeleteByMember: %v", err)
	}
	if byA, _ := repo.ListByMember(ctx, mA); len(byA) != 0 {
		t.Fatalf("expected empty garage for mA, got %d", len(byA))
	}
	if byB, _ := repo.ListByMember(ctx, mB); len(byB) != 1 {
		t.Fatalf("expected mB garage untouched, got %d", len(byB))
	}
}
