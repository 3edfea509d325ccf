package model

import (
	"time"
)

// Permissions holds the CRUD flags granted by a role
type Permissions struct {
	Create bool `gorm:"not null" json:"create"`
	Read   bool `gorm:"not null" json:"read"`
	Update bool `gorm:"not null" json:"update"`
	Delete bool `gorm:"not null" json:"delete"`
}

// AllPermissions grants every CRUD flag
func AllPermissions() Permissions {
	return Permissions{Create: true, Read: true, Update: true, Delete: true}
}

// Allows reports whether the flag for a CRUD operation is set.
// op is one of "create", "read", "update", "delete".
func (p Permissions) Allows(op string) bool {
	switch op {
	case "create":
		return p.Create
	case "read":
		return p.Read
	case "update":
		return p.Update
	case "delete":
		return p.Delete
	}
	return false
}

// Role represents a named permission set assignable to employees
type Role struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string      `gorm:"type:varchar(100);not null;index" json:"name"`
	Permissions Permissions `gorm:"embedded;embeddedPrefix:can_" json:"permissions"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (r Role) GetID() string { return r.ID }

// Position is a job title from the position catalog
type Position struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p Position) GetID() string { return p.ID }
