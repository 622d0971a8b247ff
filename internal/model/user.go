// Package model defines the data structures shared across the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash is tagged `json:"-"` so it can never be serialized outward,
// no matter which handler returns the struct. It's empty for accounts that
// only ever signed in through Google.
//
// Email is stored lowercased — normalization happens once in the auth
// service, so the UNIQUE constraint in the database sees a canonical form.
//
// Active implements soft deactivation: deactivated accounts keep their row
// (memos and tasks still reference it) but behave as nonexistent for login
// and profile lookups.
type User struct {
	ID           string    `json:"id"          db:"id"`
	Email        string    `json:"email"       db:"email"`
	Username     string    `json:"username"    db:"username"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	PasswordHash string    `json:"-"           db:"password_hash"`
	GoogleID     string    `json:"-"           db:"google_id"` // Google's stable subject ID, empty for password accounts
	AvatarURL    string    `json:"avatarUrl"   db:"avatar_url"`
	Active       bool      `json:"-"           db:"active"`
	CreatedAt    time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"   db:"updated_at"`
}
