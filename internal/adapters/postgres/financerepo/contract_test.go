package financerepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	"github.com/offroadmga/club-manager-api/internal/adapters/postgres/testutil"
	financerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
)

func TestContract_PostgresFinanceRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunFinanceRepo(t, func(t *testing.T) (financerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
