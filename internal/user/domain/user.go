package domain

import "time"

type ID string

// User is the stored account record. PasswordHash never leaves the service
// layer and is excluded from JSON.
type User struct {
	ID           ID        `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the public view of an account.
type Identity struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}
