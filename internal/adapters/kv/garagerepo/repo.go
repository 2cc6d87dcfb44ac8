package garagerepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
)

const collectionKey = "club_cars"

type record struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Repo persists garage cars as a single JSON document in a kvstore.Store.
// Writes are serialized behind a mutex.
type Repo struct {
	mu sync.Mutex
	kv kvstore.Store
}

func NewRepo(kv kvstore.Store) *Repo {
	return &Repo{kv: kv}
}

func (r *Repo) Create(ctx context.Context, c garagerepo.Car) error {
	if c.ID == "" {
		return garagerepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID == string(c.ID) {
			return garagerepo.ErrAlreadyExists
		}
	}
	recs = append(recs, toRecord(c))
	return r.save(ctx, recs)
}

func (r *Repo) Update(ctx context.Context, c garagerepo.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i, rec := range recs {
		if rec.ID == string(c.ID) {
			recs[i] = toRecord(c)
			return r.save(ctx, recs)
		}
	}
	return garagerepo.ErrNotFound
}

func (r *Repo) GetByID(ctx context.Context, id domain.CarID) (garagerepo.Car, error) {
	r.mu.Lock()
	recs, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return garagerepo.Car{}, err
	}
	for _, rec := range recs {
		if rec.ID == string(id) {
			return fromRecord(rec), nil
		}
	}
	return garagerepo.Car{}, garagerepo.ErrNotFound
}

func (r *Repo) List(ctx context.Context) ([]garagerepo.Car, error) {
	return r.list(ctx, "")
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]garagerepo.Car, error) {
	return r.list(ctx, memberID)
}

func (r *Repo) list(ctx context.Context, memberID domain.MemberID) ([]garagerepo.Car, error) {
	r.mu.Lock()
	recs, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]garagerepo.Car, 0, len(recs))
	for _, rec := range recs {
		if memberID != "" && rec.MemberID != string(memberID) {
			continue
		}
		out = append(out, fromRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		mi := strings.ToLower(out[i].Make)
		mj := strings.ToLower(out[j].Make)
		if mi != mj {
			return mi < mj
		}
		if out[i].Model != out[j].Model {
			return out[i].Model < out[j].Model
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.CarID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.ID == string(id) {
			continue
		}
		kept = append(kept, rec)
	}
	return r.save(ctx, kept)
}

func (r *Repo) DeleteByMember(ctx context.Context, memberID domain.MemberID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.MemberID == string(memberID) {
			continue
		}
		kept = append(kept, rec)
	}
	return r.save(ctx, kept)
}

func (r *Repo) load(ctx context.Context) ([]record, error) {
	doc, ok, err := r.kv.Get(ctx, collectionKey)
	if err != nil {
		return nil, fmt.Errorf("load cars: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var recs []record
	if err := json.Unmarshal(doc, &recs); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return recs, nil
}

func (r *Repo) save(ctx context.Context, recs []record) error {
	doc, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode cars: %w", err)
	}
	if err := r.kv.Set(ctx, collectionKey, doc); err != nil {
		return fmt.Errorf("save cars: %w", err)
	}
	return nil
}

func toRecord(c garagerepo.Car) record {
	return record{
		ID:          string(c.ID),
		MemberID:    string(c.MemberID),
		Make:        c.Make,
		Model:       c.Model,
		Year:        c.Year,
		Description: c.Description,
		PhotoURL:    c.PhotoURL,
	}
}

func fromRecord(rec record) garagerepo.Car {
	return garagerepo.Car{
		ID:          domain.CarID(rec.ID),
		MemberID:    domain.MemberID(rec.MemberID),
		Make:        rec.Make,
		Model:       rec.Model,
		Year:        rec.Year,
		Description: rec.Description,
		PhotoURL:    rec.PhotoURL,
	}
}
