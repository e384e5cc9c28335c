package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role selects which portal a user lands on after login.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
)

// ParseRole returns the role for s, defaulting to student when empty.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent, true
	case RoleTeacher:
		return RoleTeacher, true
	case RoleParent:
		return RoleParent, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// User is a portal account.
type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Purpose distinguishes what a verification code unlocks.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password-reset"
)

// ParsePurpose accepts the wire spellings of a purpose. Empty means registration.
func ParsePurpose(s string) (Purpose, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PurposeRegistration):
		return PurposeRegistration, true
	case string(PurposePasswordReset), "reset", "password_reset":
		return PurposePasswordReset, true
	}
	return "", false
}

func (p Purpose) String() string { return string(p) }

// Verification is a pending one-time code. There is at most one per
// (email, purpose); issuing a new one replaces the old.
type Verification struct {
	Email     string
	Purpose   Purpose
	Code      string
	Verified  bool
	ExpiresAt time.Time
}

// IsExpired reports whether the code is past its expiry at now.
func (v *Verification) IsExpired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
