package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// Role is the closed set of actor roles. Every authorization check matches
// on this type, never on raw strings.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a raw string to a Role, returning an error for unknown
// values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleCandidate, RoleCompany, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	DeviceToken string    `json:"-"` // push delivery target, never exposed
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	ListAdmins(ctx context.Context) ([]User, error)
}

type AuthUsecase interface {
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}

// Identity is the resolved acting identity for a request, extracted from
// context by usecases.
type Identity struct {
	ID   string
	Role Role
}

// IdentityFromContext reads the authenticated identity placed in the context
// by the auth middleware. Returns false when the request is unauthenticated
// or carries an unknown role.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, _ := ctx.Value(KeyUserID).(string)
	rawRole, _ := ctx.Value(KeyUserRole).(string)
	if id == "" {
		return Identity{}, false
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Identity{}, false
	}
	return Identity{ID: id, Role: role}, true
}
