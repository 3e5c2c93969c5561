package domain

import "fmt"

// Domain is a sending domain. No verification workflow exists; staff flip
// Verified by hand.
type Domain struct {
	ID       string
	Name     string
	Verified bool
	Owned
	Audit
}

type Sender struct {
	ID              string
	Name            string
	Email           string
	MobileNumber    string
	EmailVerified   bool
	MobileVerified  bool
	VerificationKey string // uuid, set once on create
	Owned
	Audit
}

// FormattedEmail renders the sender as "Name <email>".
func FormattedEmail(s Sender) string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}
