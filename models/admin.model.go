package models

import "time"

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleModerator  = "moderator"
	// RoleUser is the token role carried by participants.
	RoleUser = "user"
)

type Admin struct {
	Base
	Name       string     `gorm:"size:255;not null" json:"name"`
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	Role       string     `gorm:"size:16;not null" json:"role"`
	IsActive   bool       `gorm:"not null" json:"isActive"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	Phone      string     `gorm:"size:32" json:"phone,omitempty"`
	Department string     `json:"department,omitempty"`
}

// CanManage reports whether the admin may use admin-only routes.
func (a *Admin) CanManage() bool {
	return a.IsActive && (a.Role == RoleAdmin || a.Role == RoleSuperAdmin)
}
