package memberrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.MemberID]memberrepo.Member
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.MemberID]memberrepo.Member)}
}

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	if m.ID == "" {
		return memberrepo.ErrAlreadyExists // empty ID is invalid; app layer assigns IDs
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; ok {
		return memberrepo.ErrAlreadyExists
	}
	if err := r.checkUniqueLocked(m, m.ID); err != nil {
		return err
	}

	r.byID[m.ID] = cloneMember(m)
	return nil
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; !ok {
		return memberrepo.ErrNotFound
	}
	if err := r.checkUniqueLocked(m, m.ID); err != nil {
		return err
	}

	r.byID[m.ID] = cloneMember(m)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return cloneMember(m), nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.byID {
		if m.Subject == subject {
			return cloneMember(m), nil
		}
	}
	return memberrepo.Member{}, memberrepo.ErrNotFound
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.byID {
		if strings.EqualFold(m.Email, email) {
			return cloneMember(m), nil
		}
	}
	return memberrepo.Member{}, memberrepo.ErrNotFound
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (memberrepo.Member, error) {
	_ = ctx
	want := domain.NormalizeUsername(username)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.byID {
		if domain.NormalizeUsername(m.Username) == want {
			return cloneMember(m), nil
		}
	}
	return memberrepo.Member{}, memberrepo.ErrNotFound
}

func (r *Repo) List(ctx context.Context) ([]memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberrepo.Member, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, cloneMember(m))
	}
	sortMembersByName(out)
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.MemberID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// checkUniqueLocked validates username/email uniqueness against every record
// except excludeID. Callers hold the write lock.
func (r *Repo) checkUniqueLocked(m memberrepo.Member, excludeID domain.MemberID) error {
	username := domain.NormalizeUsername(m.Username)
	for id, existing := range r.byID {
		if id == excludeID {
			continue
		}
		if username != "" && domain.NormalizeUsername(existing.Username) == username {
			return memberrepo.ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, m.Email) {
			return memberrepo.ErrDuplicateEmail
		}
	}
	return nil
}

func cloneMember(m memberrepo.Member) memberrepo.Member {
	out := m
	if m.BirthDate != nil {
		v := *m.BirthDate
		out.BirthDate = &v
	}
	return out
}

func sortMembersByName(ms []memberrepo.Member) {
	sort.Slice(ms, func(i, j int) bool {
		ni := strings.ToLower(ms[i].Name)
		nj := strings.ToLower(ms[j].Name)
		if ni == nj {
			return string(ms[i].ID) < string(ms[j].ID)
		}
		return ni < nj
	})
}
