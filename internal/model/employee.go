package model

import (
	"slices"
	"time"
)

// RoleAdministrator is the role name that grants full administrative access.
// At least one active employee must hold it at all times.
const RoleAdministrator = "Administrador"

// Employee is the identity and employment record of a person working at one or more schools
type Employee struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Position        string    `gorm:"type:varchar(255)" json:"position"`
	Phone           string    `gorm:"type:varchar(50)" json:"phone"`
	Email           string    `gorm:"type:varchar(255);index" json:"email"`
	Active          bool      `gorm:"not null" json:"active"`
	Username        string    `gorm:"type:varchar(255);index" json:"username,omitempty"`
	Password        string    `gorm:"type:varchar(255)" json:"-"` // bcrypt hash, never serialized
	Role            string    `gorm:"type:varchar(100);index" json:"role,omitempty"`
	AssignedSchools []string  `gorm:"serializer:json" json:"assigned_schools"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Employee) GetID() string { return e.ID }

// IsAdministrator reports whether the employee holds the administrator role
func (e Employee) IsAdministrator() bool {
	return e.Role == RoleAdministrator
}

// HasLogin reports whether a credential pair is configured
func (e Employee) HasLogin() bool {
	return e.Username != "" && e.Password != ""
}

// IsAssignedTo reports whether schoolID is in the employee's assigned schools
func (e Employee) IsAssignedTo(schoolID string) bool {
	return slices.Contains(e.AssignedSchools, schoolID)
}
