package domain

import "time"

// Identity is an authenticated rider as resolved by the authentication
// provider.
type Identity struct {
	ID   string
	Name string
}

// Employee holds the stored credentials for an employee account.
type Employee struct {
	ID           string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
