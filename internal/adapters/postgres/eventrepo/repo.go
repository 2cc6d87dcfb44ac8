package eventrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
)

// Repo is a Postgres implementation of eventrepo.Repository. Attendance is a
// link table keyed (event_id, member_id); the primary key makes AddAttendee
// naturally idempotent via ON CONFLICT DO NOTHING.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO events (id, title, date, location, description, event_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, e.Title, e.Date.UTC(), e.Location, e.Description, string(e.Type))
	return err
}

func (r *Repo) Update(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(e.ID))
	if err != nil {
		return eventrepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE events
		SET title = $2, date = $3, location = $4, description = $5, event_type = $6
		WHERE id = $1
	`, id, e.Title, e.Date.UTC(), e.Location, e.Description, string(e.Type))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return eventrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	if r.pool == nil {
		return eventrepo.Event{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, title, date, location, description, event_type
		FROM events WHERE id = $1
	`, uid)
	e, err := scanEvent(row)
	if err != nil {
		return eventrepo.Event{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT member_id FROM event_attendees WHERE event_id = $1 ORDER BY member_id
	`, uid)
	if err != nil {
		return eventrepo.Event{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var mid uuid.UUID
		if err := rows.Scan(&mid); err != nil {
			return eventrepo.Event{}, err
		}
		e.Attendees = append(e.Attendees, domain.MemberID(mid.String()))
	}
	return e, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]eventrepo.Event, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, date, location, description, event_type
		FROM events
		ORDER BY date, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventrepo.Event, 0)
	index := make(map[domain.EventID]int)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	arows, err := r.pool.Query(ctx, `
		SELECT event_id, member_id FROM event_attendees ORDER BY event_id, member_id
	`)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var eid, mid uuid.UUID
		if err := arows.Scan(&eid, &mid); err != nil {
			return nil, err
		}
		if i, ok := index[domain.EventID(eid.String())]; ok {
			out[i].Attendees = append(out[i].Attendees, domain.MemberID(mid.String()))
		}
	}
	return out, arows.Err()
}

func (r *Repo) AddAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	eid, mid, err := parseEdge(eventID, memberID)
	if err != nil {
		return false, eventrepo.ErrNotFound
	}
	if err := r.ensureEventExists(ctx, eid); err != nil {
		return false, err
	}
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO event_attendees (event_id, member_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, member_id) DO NOTHING
	`, eid, mid)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) RemoveAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	eid, mid, err := parseEdge(eventID, memberID)
	if err != nil {
		return false, eventrepo.ErrNotFound
	}
	if err := r.ensureEventExists(ctx, eid); err != nil {
		return false, err
	}
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM event_attendees WHERE event_id = $1 AND member_id = $2
	`, eid, mid)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) RemoveAttendeeEverywhere(ctx context.Context, memberID domain.MemberID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	mid, err := uuid.Parse(string(memberID))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM event_attendees WHERE member_id = $1`, mid)
	return err
}

func (r *Repo) ensureEventExists(ctx context.Context, id uuid.UUID) error {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM events WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return eventrepo.ErrNotFound
	}
	return err
}

func scanEvent(row pgx.Row) (eventrepo.Event, error) {
	var (
		id        uuid.UUID
		title     string
		date      time.Time
		location  string
		desc      string
		eventType string
	)
	err := row.Scan(&id, &title, &date, &location, &desc, &eventType)
	if errors.Is(err, pgx.ErrNoRows) {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	if err != nil {
		return eventrepo.Event{}, err
	}
	return eventrepo.Event{
		ID:          domain.EventID(id.String()),
		Title:       title,
		Date:        date,
		Location:    location,
		Description: desc,
		Type:        domain.EventType(eventType),
	}, nil
}

func parseEdge(eventID domain.EventID, memberID domain.MemberID) (uuid.UUID, uuid.UUID, error) {
	eid, err := uuid.Parse(string(eventID))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	mid, err := uuid.Parse(string(memberID))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return eid, mid, nil
}
