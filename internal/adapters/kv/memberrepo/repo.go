package memberrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

// collectionKey is the kvstore slot holding the whole member collection as
// one JSON document.
const collectionKey = "club_members"

type record struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	JoinDate  time.Time  `json:"join_date"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	Gender    string     `json:"gender,omitempty"`
}

// Repo persists members as a single JSON document in a kvstore.Store.
//
// Writes are serialized behind a mutex so a failed uniqueness check can never
// leave a half-written document behind: the document is only Set after the
// full mutation validates.
type Repo struct {
	mu sync.Mutex
	kv kvstore.Store
}

func NewRepo(kv kvstore.Store) *Repo {
	return &Repo{kv: kv}
}

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	if m.ID == "" {
		return memberrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID == string(m.ID) {
			return memberrepo.ErrAlreadyExists
		}
	}
	if err := checkUnique(recs, m, ""); err != nil {
		return err
	}
	recs = append(recs, toRecord(m))
	return r.save(ctx, recs)
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, rec := range recs {
		if rec.ID == string(m.ID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return memberrepo.ErrNotFound
	}
	if err := checkUnique(recs, m, string(m.ID)); err != nil {
		return err
	}
	recs[idx] = toRecord(m)
	return r.save(ctx, recs)
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	return r.find(ctx, func(rec record) bool { return rec.ID == string(id) })
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (memberrepo.Member, error) {
	return r.find(ctx, func(rec record) bool { return rec.Subject == string(subject) })
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	return r.find(ctx, func(rec record) bool { return strings.EqualFold(rec.Email, email) })
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (memberrepo.Member, error) {
	want := domain.NormalizeUsername(username)
	return r.find(ctx, func(rec record) bool { return domain.NormalizeUsername(rec.Username) == want })
}

func (r *Repo) List(ctx context.Context) ([]memberrepo.Member, error) {
	r.mu.Lock()
	recs, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]memberrepo.Member, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		ni := strings.ToLower(out[i].Name)
		nj := strings.ToLower(out[j].Name)
		if ni == nj {
			return string(out[i].ID) < string(out[j].ID)
		}
		return ni < nj
	})
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.MemberID) error {
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

func (r *Repo) find(ctx context.Context, match func(record) bool) (memberrepo.Member, error) {
	r.mu.Lock()
	recs, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return memberrepo.Member{}, err
	}
	for _, rec := range recs {
		if match(rec) {
			return fromRecord(rec), nil
		}
	}
	return memberrepo.Member{}, memberrepo.ErrNotFound
}

func (r *Repo) load(ctx context.Context) ([]record, error) {
	doc, ok, err := r.kv.Get(ctx, collectionKey)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var recs []record
	if err := json.Unmarshal(doc, &recs); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return recs, nil
}

func (r *Repo) save(ctx context.Context, recs []record) error {
	doc, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	if err := r.kv.Set(ctx, collectionKey, doc); err != nil {
		return fmt.Errorf("save members: %w", err)
	}
	return nil
}

func checkUnique(recs []record, m memberrepo.Member, excludeID string) error {
	username := domain.NormalizeUsername(m.Username)
	for _, rec := range recs {
		if rec.ID == excludeID {
			continue
		}
		if username != "" && domain.NormalizeUsername(rec.Username) == username {
			return memberrepo.ErrDuplicateUsername
		}
		if strings.EqualFold(rec.Email, m.Email) {
			return memberrepo.ErrDuplicateEmail
		}
	}
	return nil
}

func toRecord(m memberrepo.Member) record {
	return record{
		ID:        string(m.ID),
		Subject:   string(m.Subject),
		Email:     m.Email,
		Username:  m.Username,
		Name:      m.Name,
		Role:      string(m.Role),
		Status:    string(m.Status),
		JoinDate:  m.JoinDate,
		BirthDate: m.BirthDate,
		Avatar:    m.Avatar,
		Gender:    m.Gender,
	}
}

func fromRecord(rec record) memberrepo.Member {
	return memberrepo.Member{
		ID:        domain.MemberID(rec.ID),
		Subject:   domain.SubjectID(rec.Subject),
		Email:     rec.Email,
		Username:  rec.Username,
		Name:      rec.Name,
		Role:      domain.Role(rec.Role),
		Status:    domain.MemberStatus(rec.Status),
		JoinDate:  rec.JoinDate,
		BirthDate: rec.BirthDate,
		Avatar:    rec.Avatar,
		Gender:    rec.Gender,
	}
}
