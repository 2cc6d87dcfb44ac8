package domain

import "time"

// Contribution is a financial contribution recorded against a member.
// Contributions are immutable once created; the only mutation is deletion.
type Contribution struct {
	ID       ContributionID
	MemberID MemberID
	Date     time.Time
	Amount   float64
}

// Expense is a club-level expense. Not tied to a member.
type Expense struct {
	ID          ExpenseID
	Date        time.Time
	Description string
	Amount      float64
}
