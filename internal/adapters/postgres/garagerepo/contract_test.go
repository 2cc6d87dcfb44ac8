package garagerepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	"github.com/offroadmga/club-manager-api/internal/adapters/postgres/testutil"
	garagerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
)

func TestContract_PostgresGarageRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunGarageRepo(t, func(t *testing.T) (garagerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
