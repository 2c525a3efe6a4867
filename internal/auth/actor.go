// Package auth resolves callers into actors and guards role-restricted operations.
package auth

import (
	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"
)

// Actor is the authenticated caller of an operation. A nil *Actor is an anonymous visitor.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// IsStaff reports whether the actor is an admin or an official.
func (a *Actor) IsStaff() bool {
	return a != nil && a.Role.IsStaff()
}

// ID returns the actor's user id, or "" for anonymous callers.
func (a *Actor) ID() string {
	if a == nil {
		return ""
	}
	return a.UserID
}

// RequireUser fails with ErrUnauthenticated for anonymous callers.
func RequireUser(a *Actor) error {
	if a == nil || a.UserID == "" {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// RequireStaff fails with ErrUnauthenticated for anonymous callers and ErrForbidden for
// anyone who is not an admin or official.
func RequireStaff(a *Actor) error {
	if err := RequireUser(a); err != nil {
		return err
	}
	if !a.IsStaff() {
		return apperr.ErrForbidden
	}
	return nil
}
