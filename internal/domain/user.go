package domain

import "time"

// User is an account without persistence concerns. Identity is the ID
// string; everything else is profile or credential material.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
