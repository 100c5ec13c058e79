package models

// Identity is the handle the identity provider hands out for an authenticated principal.
//
// A nil *Identity stands for the anonymous session.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthRequestState tracks whether an auth call is in flight.
type AuthRequestState int

const (
	Idle AuthRequestState = iota
	Pending
)

func (s AuthRequestState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	default:
		return ""
	}
}
