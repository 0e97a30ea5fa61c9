package postgres

import "time"

type userRow struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Phone        *string
	Address      *string
	Title        *string
	Bio          *string
	Enabled      bool
	Locked       bool
	UsingMFA     bool
	CreatedAt    time.Time
}
