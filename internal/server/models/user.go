package models

import "time"

// User is a registered account. PasswordHash and Salt never leave the
// server; they are excluded from JSON.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	UserName     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Salt         []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
