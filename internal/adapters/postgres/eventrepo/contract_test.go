package eventrepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	"github.com/offroadmga/club-manager-api/internal/adapters/postgres/testutil"
	eventrepoport "github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
)

func TestContract_PostgresEventRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunEventRepo(t, func(t *testing.T) (eventrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
