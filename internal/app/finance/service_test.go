package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	memfinancerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/financerepo"
	memmemberrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/memberrepo"
	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

func newService(t *testing.T) (*Service, domain.MemberID) {
	t.Helper()
	members := memmemberrepo.NewRepo()
	mID := domain.MemberID("m-1")
	if err := members.Create(context.Background(), memberrepo.Member{
		ID:       mID,
		Email:    "a@example.com",
		Username: "a",
		Name:     "A",
		Role:     domain.RoleMember,
		Status:   domain.MemberStatusActive,
		JoinDate: time.Unix(1000, 0).UTC(),
	}); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return NewService(memfinancerepo.NewRepo(), members), mID
}

func admin() Actor                    { return Actor{MemberID: "admin-id", Role: domain.RoleAdmin} }
func member(id domain.MemberID) Actor { return Actor{MemberID: id, Role: domain.RoleMember} }

func wantAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v, want %s %d", err, code, status)
	}
}

func TestService_AddContribution_AdminOnly(t *testing.T) {
	t.Parallel()
	svc, mID := newService(t)

	in := AddContributionInput{MemberID: mID, Date: time.Unix(2000, 0).UTC(), Amount: 50}
	_, err := svc.AddContribution(context.Background(), member(mID), in)
	wantAppError(t, err, 403, "UNAUTHORIZED")

	c, err := svc.AddContribution(context.Background(), admin(), in)
	if err != nil || c.Amount != 50 || c.MemberID != mID {
		t.Fatalf("add: %+v err=%v", c, err)
	}
}

func TestService_AddContribution_Validation(t *testing.T) {
	t.Parallel()
	svc, mID := newService(t)

	_, err := svc.AddContribution(context.Background(), admin(), AddContributionInput{
		MemberID: mID, Date: time.Unix(2000, 0).UTC(), Amount: 0,
	})
	wantAppError(t, err, 422, "VALIDATION_ERROR")

	// A contribution cannot reference a member that does not exist.
	_, err = svc.AddContribution(context.Background(), admin(), AddContributionInput{
		MemberID: "ghost", Date: time.Unix(2000, 0).UTC(), Amount: 25,
	})
	wantAppError(t, err, 404, "NOT_FOUND")
}

func TestService_ListContributions_Access(t *testing.T) {
	t.Parallel()
	svc, mID := newService(t)

	if _, err := svc.AddContribution(context.Background(), admin(), AddContributionInput{
		MemberID: mID, Date: time.Unix(2000, 0).UTC(), Amount: 50,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The full ledger is admin-only.
	_, err := svc.ListContributions(context.Background(), member(mID), "")
	wantAppError(t, err, 403, "UNAUTHORIZED")

	all, err := svc.ListContributions(context.Background(), admin(), "")
	if err != nil || len(all) != 1 {
		t.Fatalf("admin list: n=%d err=%v", len(all), err)
	}

	// A member can read their own slice but nobody else's.
	own, err := svc.ListContributions(context.Background(), member(mID), mID)
	if err != nil || len(own) != 1 {
		t.Fatalf("own list: n=%d err=%v", len(own), err)
	}
	_, err = svc.ListContributions(context.Background(), member("other"), mID)
	wantAppError(t, err, 403, "UNAUTHORIZED")
}

func TestService_RemoveContribution_AdminOnlyIdempotent(t *testing.T) {
	t.Parallel()
	svc, mID := newService(t)

	c, err := svc.AddContribution(context.Background(), admin(), AddContributionInput{
		MemberID: mID, Date: time.Unix(2000, 0).UTC(), Amount: 50,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	err = svc.RemoveContribution(context.Background(), member(mID), c.ID)
	wantAppError(t, err, 403, "UNAUTHORIZED")

	if err := svc.RemoveContribution(context.Background(), admin(), c.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveContribution(context.Background(), admin(), c.ID); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if all, _ := svc.ListContributions(context.Background(), admin(), ""); len(all) != 0 {
		t.Fatalf("ledger not empty: %d", len(all))
	}
}

func TestService_Expenses_AdminOnly(t *testing.T) {
	t.Parallel()
	svc, mID := newService(t)

	_, err := svc.AddExpense(context.Background(), member(mID), AddExpenseInput{
		Date: time.Unix(2000, 0).UTC(), Description: "Permits", Amount: 120,
	})
	wantAppError(t, err, 403, "UNAUTHORIZED")

	if _, err := svc.AddExpense(context.Background(), admin(), AddExpenseInput{
		Date: time.Unix(2000, 0).UTC(), Description: "Permits", Amount: 120,
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	_, err = svc.ListExpenses(context.Background(), member(mID))
	wantAppError(t, err, 403, "UNAUTHORIZED")

	xs, err := svc.ListExpenses(context.Background(), admin())
	if err != nil || len(xs) != 1 {
		t.Fatalf("list expenses: n=%d err=%v", len(xs), err)
	}
}
