package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
)

// DefaultRole is assigned on first-login provisioning and on registration.
const DefaultRole = RoleEmployee

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleInstructor, RoleManager, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Password    string     `json:"-"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	Department  string     `json:"department"`
	Position    string     `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}
