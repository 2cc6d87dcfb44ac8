package domain

import "time"

type EventType string

const (
	EventTypeSoftTrail          EventType = "soft-trail"
	EventTypeHardTrail          EventType = "hard-trail"
	EventTypeMembersMeetup      EventType = "members-meetup"
	EventTypeClubOfficialMeetup EventType = "club-official-meetup"
)

// ValidEventType reports whether t is a known event type.
func ValidEventType(t EventType) bool {
	switch t {
	case EventTypeSoftTrail, EventTypeHardTrail, EventTypeMembersMeetup, EventTypeClubOfficialMeetup:
		return true
	}
	return false
}

// Event is a club event. Attendees is a set of member IDs; the repository
// contract guarantees no duplicates.
type Event struct {
	ID          EventID
	Title       string
	Date        time.Time
	Location    string
	Description string
	Type        EventType

	Attendees []MemberID
}

// HasAttendee reports whether memberID is in the attendee set.
func (e Event) HasAttendee(memberID MemberID) bool {
	for _, id := range e.Attendees {
		if id == memberID {
			return true
		}
	}
	return false
}
