package model

import "time"

// User is an account allowed to sign in.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	Profile      Profile   `json:"profile"`
}

// Profile extends a user account with organizational details.
type Profile struct {
	Position   string `json:"position"`
	Department string `json:"department"`
}
