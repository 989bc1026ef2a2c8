package models

// UserStatus is the account state an IdP reports for a user.
type UserStatus int

const (
	StatusActive UserStatus = iota
	StatusDisabled
)

// Profile carries the user attributes synchronized to the recipient.
// Empty strings mean "not provided"; Status nil means "unchanged".
type Profile struct {
	Email      string
	FirstName  string
	LastName   string
	MiddleName string
	Status     *UserStatus
	// Alias is the initiator-side user id, kept on the recipient so later
	// events that only reference the id can still find the user.
	Alias string
}

// InitiatorUser is a user as seen by the source IdP.
type InitiatorUser struct {
	ID       string
	Username string
	Profile  Profile
}

// StatusPtr returns a pointer to s, for building status deltas.
func StatusPtr(s UserStatus) *UserStatus {
	return &s
}
