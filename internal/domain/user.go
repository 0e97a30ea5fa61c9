package domain

import "time"

// User is the identity record of the invoicing backend.
// Enabled stays false until the account-verification link is consumed.
// Locked is an orthogonal administrative flag.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Phone        string
	Address      string
	Title        string
	Bio          string
	Enabled      bool
	Locked       bool
	UsingMFA     bool
	CreatedAt    time.Time
}

// FullName is used when rendering notification messages.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
