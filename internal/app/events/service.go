package events

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
)

type Service struct {
	repo eventrepo.Repository

	newEventID func() domain.EventID
}

func NewService(repo eventrepo.Repository) *Service {
	return &Service{
		repo: repo,
		newEventID: func() domain.EventID {
			return domain.EventID(uuid.NewString())
		},
	}
}

// SetNewEventIDForTest overrides event ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewEventIDForTest(fn func() domain.EventID) {
	if fn != nil {
		s.newEventID = fn
	}
}

func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	es, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Event, 0, len(es))
	for _, e := range es {
		out = append(out, toDomain(e))
	}
	return out, nil
}

func (s *Service) GetEvent(ctx context.Context, id domain.EventID) (domain.Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return domain.Event{}, notFound()
		}
		return domain.Event{}, storageError(err)
	}
	return toDomain(e), nil
}

// CreateEvent creates an event on behalf of an authenticated member.
// club-official-meetup events may only be created by an admin.
func (s *Service) CreateEvent(ctx context.Context, actor Actor, in CreateEventInput) (domain.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Event{}, validationError("title", "must be non-empty")
	}
	if !domain.ValidEventType(in.Type) {
		return domain.Event{}, validationError("type", "unknown event type")
	}
	if in.Type == domain.EventTypeClubOfficialMeetup && !actor.IsAdmin() {
		return domain.Event{}, unauthorized()
	}

	e := eventrepo.Event{
		ID:          s.newEventID(),
		Title:       title,
		Date:        in.Date,
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		Type:        in.Type,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return domain.Event{}, storageError(err)
	}
	return toDomain(e), nil
}

// UpdateEvent edits an event's own fields. Admin only.
func (s *Service) UpdateEvent(ctx context.Context, actor Actor, id domain.EventID, in UpdateEventInput) (domain.Event, error) {
	if !actor.IsAdmin() {
		return domain.Event{}, unauthorized()
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return domain.Event{}, notFound()
		}
		return domain.Event{}, storageError(err)
	}

	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.Event{}, validationError("title", "cannot be null")
		}
		title := strings.TrimSpace(in.Title.Value())
		if title == "" {
			return domain.Event{}, validationError("title", "must be non-empty")
		}
		e.Title = title
	}
	if in.Date.IsSpecified() && !in.Date.IsNull() {
		e.Date = in.Date.Value()
	}
	if in.Location.IsSpecified() && !in.Location.IsNull() {
		e.Location = strings.TrimSpace(in.Location.Value())
	}
	if in.Description.IsSpecified() && !in.Description.IsNull() {
		e.Description = in.Description.Value()
	}
	if in.Type.IsSpecified() {
		if in.Type.IsNull() {
			return domain.Event{}, validationError("type", "cannot be null")
		}
		t := in.Type.Value()
		if !domain.ValidEventType(t) {
			return domain.Event{}, validationError("type", "unknown event type")
		}
		e.Type = t
	}

	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return domain.Event{}, notFound()
		}
		return domain.Event{}, storageError(err)
	}

	// Update does not return edges; re-read for the canonical record.
	return s.GetEvent(ctx, id)
}

// JoinEvent registers the actor's member as attending. Idempotent: a second
// join reports AlreadyJoined without error. Inactive members cannot join.
func (s *Service) JoinEvent(ctx context.Context, actor Actor, id domain.EventID) (JoinResult, error) {
	if !actor.IsActive() {
		return JoinResult{}, &Error{
			Status:  403,
			Code:    "ACCOUNT_INACTIVE",
			Message: "inactive members cannot join events",
		}
	}

	created, err := s.repo.AddAttendee(ctx, id, actor.MemberID)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return JoinResult{}, notFound()
		}
		return JoinResult{}, storageError(err)
	}

	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return JoinResult{}, err
	}
	return JoinResult{Event: e, AlreadyJoined: !created}, nil
}

// LeaveEvent removes the actor's member from the attendee set. Idempotent.
func (s *Service) LeaveEvent(ctx context.Context, actor Actor, id domain.EventID) (LeaveResult, error) {
	removed, err := s.repo.RemoveAttendee(ctx, id, actor.MemberID)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return LeaveResult{}, notFound()
		}
		return LeaveResult{}, storageError(err)
	}

	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return LeaveResult{}, err
	}
	return LeaveResult{Event: e, WasAttendee: removed}, nil
}

func toDomain(e eventrepo.Event) domain.Event {
	return domain.Event{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Type:        e.Type,
		Attendees:   append([]domain.MemberID(nil), e.Attendees...),
	}
}

func notFound() *Error {
	return &Error{Status: 404, Code: "NOT_FOUND", Message: "event not found"}
}

func unauthorized() *Error {
	return &Error{Status: 403, Code: "UNAUTHORIZED", Message: "operation not permitted for this actor"}
}

func validationError(field, msg string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: msg},
	}
}

func storageError(err error) *Error {
	return &Error{Status: 500, Code: "STORAGE_FAILURE", Message: err.Error()}
}
