// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account that can sign in to the dashboard.
//
// PasswordHash holds the bcrypt output, never the plaintext. It is tagged
// json:"-" so a User can never leak its hash through an encoder.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
