package garagerepo

import (
	"testing"

	"github.com/offroadmga/club-manager-api/internal/adapters/contracttest"
	garagerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
)

func TestContract_GarageRepo(t *testing.T) {
	contracttest.RunGarageRepo(t, func(t *testing.T) (garagerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
