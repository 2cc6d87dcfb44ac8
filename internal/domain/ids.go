package domain

// SubjectID is the authenticated subject issued by the identity provider.
// We model it as an opaque identifier: its format is controlled by the provider.
type SubjectID string

// MemberID is an internal identifier for a member record.
type MemberID string

// EventID is an internal identifier for an event record.
type EventID string

// CarID is an internal identifier for a garage car record.
type CarID string

// ContributionID is an internal identifier for a contribution record.
type ContributionID string

// ExpenseID is an internal identifier for an expense record.
type ExpenseID string
