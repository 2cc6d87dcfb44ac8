package garagerepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
)

// Repo is an in-memory implementation of garagerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	cars map[domain.CarID]garagerepo.Car
}

func NewRepo() *Repo {
	return &Repo{cars: make(map[domain.CarID]garagerepo.Car)}
}

func (r *Repo) Create(ctx context.Context, c garagerepo.Car) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[c.ID]; ok {
		return garagerepo.ErrAlreadyExists
	}
	r.cars[c.ID] = c
	return nil
}

func (r *Repo) Update(ctx context.Context, c garagerepo.Car) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cars[c.ID]; !ok {
		return garagerepo.ErrNotFound
	}
	r.cars[c.ID] = c
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CarID) (garagerepo.Car, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cars[id]
	if !ok {
		return garagerepo.Car{}, garagerepo.ErrNotFound
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context) ([]garagerepo.Car, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]garagerepo.Car, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, c)
	}
	sortCars(out)
	return out, nil
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]garagerepo.Car, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]garagerepo.Car, 0)
	for _, c := range r.cars {
		if c.MemberID == memberID {
			out = append(out, c)
		}
	}
	sortCars(out)
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.CarID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cars, id)
	return nil
}

func (r *Repo) DeleteByMember(ctx context.Context, memberID domain.MemberID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.cars {
		if c.MemberID == memberID {
			delete(r.cars, id)
		}
	}
	return nil
}

func sortCars(cs []garagerepo.Car) {
	sort.Slice(cs, func(i, j int) bool {
		mi := strings.ToLower(cs[i].Make)
		mj := strings.ToLower(cs[j].Make)
		if mi != mj {
			return mi < mj
		}
		if cs[i].Model != cs[j].Model {
			return cs[i].Model < cs[j].Model
		}
		return string(cs[i].ID) < string(cs[j].ID)
	})
}
