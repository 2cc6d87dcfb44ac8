package domain

// Car is a vehicle in a member's garage. A member may own any number of
// cars; the record is descriptive only and carries no registration data.
type Car struct {
	ID       CarID
	MemberID MemberID

	Make        string
	Model       string
	Year        int
	Description string
	PhotoURL    string
}
