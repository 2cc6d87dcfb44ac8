package financerepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	memkv "github.com/offroadmga/club-manager-api/internal/adapters/memory/kvstore"
	financerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
)

func TestContract_KVFinanceRepo(t *testing.T) {
	contracttest.RunFinanceRepo(t, func(t *testing.T) (financerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(memkv.NewStore()), nil
	})
}
