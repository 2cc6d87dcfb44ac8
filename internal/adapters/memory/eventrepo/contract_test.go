package eventrepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	eventrepoport "github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
)

func TestContract_EventRepo(t *testing.T) {
	contracttest.RunEventRepo(t, func(t *testing.T) (eventrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
