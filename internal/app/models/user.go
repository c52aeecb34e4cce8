package models

import (
	"time"
)

// User defines a registered participant based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserUpdate carries the whitelisted fields of a user update; nil fields are left unchanged
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
}

// Empty reports whether the update changes nothing
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.PhoneNumber == nil
}

// Admin defines an administrator account based on the 'admins' table
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// AccessToken is an entry of the server-side active token list
type AccessToken struct {
	ID          int64       `db:"id"`
	Token       string      `db:"token"`
	SubjectKind SubjectKind `db:"subject_kind"`
	SubjectID   int64       `db:"subject_id"`
	ExpiresAt   time.Time   `db:"expires_at"`
	Revoked     bool        `db:"revoked"`
	CreatedAt   time.Time   `db:"created_at"`
}

// Usable reports whether the token is unrevoked and unexpired at now
func (t *AccessToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
