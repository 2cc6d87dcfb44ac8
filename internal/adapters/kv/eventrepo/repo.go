package eventrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
)

const collectionKey = "club_events"

type record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Type        string    `json:"event_type"`
	Attendees   []string  `json:"attendees"`
}

// Repo persists events (attendance inline) as a single JSON document in a
// kvstore.Store. Writes are serialized behind a mutex.
type Repo struct {
	mu sync.Mutex
	kv kvstore.Store
}

func NewRepo(kv kvstore.Store) *Repo {
	return &Repo{kv: kv}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	if e.ID == "" {
		return eventrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID == string(e.ID) {
			return eventrepo.ErrAlreadyExists
		}
	}
	recs = append(recs, toRecord(e))
	return r.save(ctx, recs)
}

func (r *Repo) Update(ctx context.Context, e eventrepo.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i, rec := range recs {
		if rec.ID == string(e.ID) {
			next := toRecord(e)
			// Attendance edges are owned by Add/RemoveAttendee.
			next.Attendees = rec.Attendees
			recs[i] = next
			return r.save(ctx, recs)
		}
	}
	return eventrepo.ErrNotFound
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	r.mu.Lock()
	recs, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return eventrepo.Event{}, err
	}
	for _, rec := range recs {
		if rec.ID == string(id) {
			return fromRecord(rec), nil
		}
	}
	return eventrepo.Event{}, eventrepo.ErrNotFound
}

func (r *Repo) List(ctx context.Context) ([]eventrepo.Event, error) {
	r.mu.Lock()
	recs, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]eventrepo.Event, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
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
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for i, rec := range recs {
		if rec.ID != string(eventID) {
			continue
		}
		for _, a := range rec.Attendees {
			if a == string(memberID) {
				return false, nil
			}
		}
		recs[i].Attendees = append(rec.Attendees, string(memberID))
		return true, r.save(ctx, recs)
	}
	return false, eventrepo.ErrNotFound
}

func (r *Repo) RemoveAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for i, rec := range recs {
		if rec.ID != string(eventID) {
			continue
		}
		kept := make([]string, 0, len(rec.Attendees))
		removed := false
		for _, a := range rec.Attendees {
			if a == string(memberID) {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		if !removed {
			return false, nil
		}
		recs[i].Attendees = kept
		return true, r.save(ctx, recs)
	}
	return false, eventrepo.ErrNotFound
}

func (r *Repo) RemoveAttendeeEverywhere(ctx context.Context, memberID domain.MemberID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i, rec := range recs {
		kept := make([]string, 0, len(rec.Attendees))
		for _, a := range rec.Attendees {
			if a == string(memberID) {
				changed = true
				continue
			}
			kept = append(kept, a)
		}
		recs[i].Attendees = kept
	}
	if !changed {
		return nil
	}
	return r.save(ctx, recs)
}

func (r *Repo) load(ctx context.Context) ([]record, error) {
	doc, ok, err := r.kv.Get(ctx, collectionKey)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var recs []record
	if err := json.Unmarshal(doc, &recs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return recs, nil
}

func (r *Repo) save(ctx context.Context, recs []record) error {
	doc, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := r.kv.Set(ctx, collectionKey, doc); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

func toRecord(e eventrepo.Event) record {
	attendees := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		attendees = append(attendees, string(a))
	}
	return record{
		ID:          string(e.ID),
		Title:       e.Title,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Type:        string(e.Type),
		Attendees:   attendees,
	}
}

func fromRecord(rec record) eventrepo.Event {
	attendees := make([]domain.MemberID, 0, len(rec.Attendees))
	for _, a := range rec.Attendees {
		attendees = append(attendees, domain.MemberID(a))
	}
	return eventrepo.Event{
		ID:          domain.EventID(rec.ID),
		Title:       rec.Title,
		Date:        rec.Date,
		Location:    rec.Location,
		Description: rec.Description,
		Type:        domain.EventType(rec.Type),
		Attendees:   attendees,
	}
}
