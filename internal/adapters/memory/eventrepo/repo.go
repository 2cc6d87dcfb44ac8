package eventrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
)

// Repo is an in-memory implementation of eventrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.EventID]eventrepo.Event
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.EventID]eventrepo.Event)}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	if e.ID == "" {
		return eventrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; ok {
		return eventrepo.ErrAlreadyExists
	}
	r.byID[e.ID] = cloneEvent(e)
	return nil
}

func (r *Repo) Update(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[e.ID]
	if !ok {
		return eventrepo.ErrNotFound
	}
	// Attendance edges are owned by Add/RemoveAttendee, not Update.
	e.Attendees = existing.Attendees
	r.byID[e.ID] = cloneEvent(e)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *Repo) List(ctx context.Context) ([]eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]eventrepo.Event, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return string(out[i].ID) < string(out[j].ID)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (r *Repo) AddAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[eventID]
	if !ok {
		return false, eventrepo.ErrNotFound
	}
	for _, id := range e.Attendees {
		if id == memberID {
			return false, nil
		}
	}
	e.Attendees = append(append([]domain.MemberID(nil), e.Attendees...), memberID)
	r.byID[eventID] = e
	return true, nil
}

func (r *Repo) RemoveAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[eventID]
	if !ok {
		return false, eventrepo.ErrNotFound
	}
	kept := make([]domain.MemberID, 0, len(e.Attendees))
	removed := false
	for _, id := range e.Attendees {
		if id == memberID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if removed {
		e.Attendees = kept
		r.byID[eventID] = e
	}
	return removed, nil
}

func (r *Repo) RemoveAttendeeEverywhere(ctx context.Context, memberID domain.MemberID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.byID {
		kept := make([]domain.MemberID, 0, len(e.Attendees))
		changed := false
		for _, a := range e.Attendees {
			if a == memberID {
				changed = true
				continue
			}
			kept = append(kept, a)
		}
		if changed {
			e.Attendees = kept
			r.byID[id] = e
		}
	}
	return nil
}

func cloneEvent(e eventrepo.Event) eventrepo.Event {
	out := e
	out.Attendees = append([]domain.MemberID(nil), e.Attendees...)
	return out
}
