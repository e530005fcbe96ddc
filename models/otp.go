package models

import (
	"time"
)

// PendingRegistration holds an in-flight signup awaiting OTP confirmation.
// At most one exists per email; issuing a new code for the same email
// overwrites the prior record. The password is stored bcrypt-hashed only.
type PendingRegistration struct {
	Email        string    `json:"email"`
	Code         string    `json:"code"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"passwordHash"`
	Contact      string    `json:"contact"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the code can no longer be verified at t.
func (p *PendingRegistration) Expired(t time.Time) bool {
	return t.After(p.ExpiresAt)
}
