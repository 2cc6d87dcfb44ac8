package financerepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	financerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
)

func TestContract_FinanceRepo(t *testing.T) {
	contracttest.RunFinanceRepo(t, func(t *testing.T) (financerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
