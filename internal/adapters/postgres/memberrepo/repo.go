package memberrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/offroadmga/club-manager-api/internal/adapters/postgres"
	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

// Repo is a Postgres implementation of memberrepo.Repository.
//
// Uniqueness is enforced by real unique indexes over lower(email) and
// lower(username); violations are mapped back to the port's sentinel errors
// so a concurrent multi-client deployment behaves the same as the
// single-writer backings.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const memberColumns = `id, subject, email, username, name, role, status, join_date, birth_date, avatar, gender`

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(m.ID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		id,
		string(m.Subject),
		m.Email,
		m.Username,
		m.Name,
		string(m.Role),
		string(m.Status),
		m.JoinDate.UTC(),
		utcPtr(m.BirthDate),
		m.Avatar,
		m.Gender,
	)
	return mapMemberError(err)
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(m.ID))
	if err != nil {
		return memberrepo.ErrNotFound
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE members
		SET subject = $2,
		    email = $3,
		    username = $4,
		    name = $5,
		    role = $6,
		    status = $7,
		    join_date = $8,
		    birth_date = $9,
		    avatar = $10,
		    gender = $11
		WHERE id = $1
	`,
		id,
		string(m.Subject),
		m.Email,
		m.Username,
		m.Name,
		string(m.Role),
		string(m.Status),
		m.JoinDate.UTC(),
		utcPtr(m.BirthDate),
		m.Avatar,
		m.Gender,
	)
	if err != nil {
		return mapMemberError(err)
	}
	if ct.RowsAffected() == 0 {
		return memberrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return r.getWhere(ctx, `id = $1`, uid)
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (memberrepo.Member, error) {
	return r.getWhere(ctx, `subject = $1`, string(subject))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	return r.getWhere(ctx, `lower(email) = lower($1)`, email)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (memberrepo.Member, error) {
	return r.getWhere(ctx, `lower(username) = $1`, domain.NormalizeUsername(username))
}

func (r *Repo) List(ctx context.Context) ([]memberrepo.Member, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM members
		ORDER BY lower(name), id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]memberrepo.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.MemberID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return nil // unparseable id cannot exist; delete is idempotent
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, uid)
	return err
}

func (r *Repo) getWhere(ctx context.Context, where string, arg any) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE `+where, arg)
	return scanMember(row)
}

func scanMember(row pgx.Row) (memberrepo.Member, error) {
	var (
		id        uuid.UUID
		subject   string
		email     string
		username  string
		name      string
		role      string
		status    string
		joinDate  time.Time
		birthDate *time.Time
		avatar    string
		gender    string
	)
	err := row.Scan(&id, &subject, &email, &username, &name, &role, &status, &joinDate, &birthDate, &avatar, &gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	if err != nil {
		return memberrepo.Member{}, err
	}
	return memberrepo.Member{
		ID:        domain.MemberID(id.String()),
		Subject:   domain.SubjectID(subject),
		Email:     email,
		Username:  username,
		Name:      name,
		Role:      domain.Role(role),
		Status:    domain.MemberStatus(status),
		JoinDate:  joinDate,
		BirthDate: birthDate,
		Avatar:    avatar,
		Gender:    gender,
	}, nil
}

func mapMemberError(err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
		switch pe.ConstraintName {
		case "members_username_unique":
			return memberrepo.ErrDuplicateUsername
		case "members_email_unique":
			return memberrepo.ErrDuplicateEmail
		case "members_pkey":
			return memberrepo.ErrAlreadyExists
		}
	}
	return err
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
