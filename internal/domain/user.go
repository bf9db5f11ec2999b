package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/stayvista-server/internal/utils"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleGuest, RoleHost, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// StatusRequested marks a guest asking to become a host.
const StatusRequested = "Requested"

// User is a Principal. Email is the natural key.
type User struct {
	ID        string         `json:"_id"`
	Email     string         `json:"email" validate:"required,email"`
	Name      string         `json:"name"`
	Image     string         `json:"image,omitempty"`
	Role      Role           `json:"role"`
	Status    string         `json:"status,omitempty"`
	Profile   map[string]any `json:"profile,omitempty"`
	CreatedAt time.Time      `json:"timestamp"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Image  *string `json:"image,omitempty"`
	Role   *Role   `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (p *UserPatch) Validate() error {
	if p.Role != nil {
		if _, ok := ParseRole(string(*p.Role)); !ok {
			return fmt.Errorf("%w: role must be one of guest, host, admin", ErrInvalidInput)
		}
	}
	if p.Name == nil && p.Image == nil && p.Role == nil && p.Status == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	return nil
}

// Normalize trims the natural key and applies the default role.
func (u *User) Normalize() {
	u.Email = utils.NormalizeEmail(u.Email)
	u.Name = utils.NormalizeString(u.Name)
	if u.Role == "" {
		u.Role = RoleGuest
	}
}

func (u *User) Validate() error {
	if err := validateStruct(u); err != nil {
		return err
	}
	if _, ok := ParseRole(string(u.Role)); !ok {
		return fmt.Errorf("%w: role must be one of guest, host, admin", ErrInvalidInput)
	}
	return nil
}

// SessionRequest is the body of a token issue request.
type SessionRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

func (s *SessionRequest) Validate() error {
	s.Email = utils.NormalizeEmail(s.Email)
	return validateStruct(s)
}
