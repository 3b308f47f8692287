package models

import (
	"fmt"
	"time"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ParseRole converts a raw role string into a Role. An empty string maps to RoleStaff.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStaff, "":
		return RoleStaff, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Satisfies reports whether a holder of r may access a route that requires the given role.
func (r Role) Satisfies(required Role) bool {
	switch r {
	case RoleAdmin:
		return required == RoleAdmin || required == RoleStaff
	case RoleStaff:
		return required == RoleStaff
	default:
		return false
	}
}

// User represents an account that can log into the inventory system.
type User struct {
	ID                  string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username            string     `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Password            string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Role                Role       `json:"role" gorm:"type:varchar(20);not null;index"`
	ResetPasswordToken  string     `json:"-" gorm:"type:varchar(64);index"` // sha256 hex of the raw token
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// ClearReset drops any pending password reset.
func (u *User) ClearReset() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}

// Session is the authenticated identity attached to a request after token validation.
type Session struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
