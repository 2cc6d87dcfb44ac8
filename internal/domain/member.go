package domain

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member is the domain representation of a club member profile.
//
// Username is stored lowercase; uniqueness over usernames is case-insensitive.
type Member struct {
	ID      MemberID
	Subject SubjectID

	Email    string
	Username string
	Name     string

	Role   Role
	Status MemberStatus

	JoinDate  time.Time
	BirthDate *time.Time
	Avatar    string
	Gender    string
}

func (m Member) IsAdmin() bool  { return m.Role == RoleAdmin }
func (m Member) IsActive() bool { return m.Status == MemberStatusActive }

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleMember || r == RoleAdmin
}

// ValidMemberStatus reports whether s is a known member status.
func ValidMemberStatus(s MemberStatus) bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}
