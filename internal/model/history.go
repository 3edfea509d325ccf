package model

import (
	"time"

	"gorm.io/datatypes"
)

// Canonical history actions, one per CRUD verb
const (
	ActionCreate = "Añadir"
	ActionUpdate = "Actualizar"
	ActionDelete = "Eliminar"

	// ActionError marks a refused guarded operation. It is not part of the canonical vocabulary.
	ActionError = "Error"
)

// SystemActor is the performer recorded when no actor is known
const SystemActor = "Sistema"

// Entity type tags used on history entries
const (
	EntityEmployee  = "employee"
	EntitySchool    = "school"
	EntityWorkEntry = "work_entry"
	EntityPosition  = "position"
	EntityRole      = "role"
)

// Display placeholders for references that no longer resolve
const (
	PlaceholderEmployee = "empleado"
	PlaceholderSchool   = "colegio"
	PlaceholderUnknown  = "Desconocido"
)

// HistoryLog is one entry of the system-wide append-only mutation ledger
type HistoryLog struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Action      string            `gorm:"type:varchar(20);not null;index" json:"action"`
	Description string            `gorm:"type:text;not null" json:"description"`
	PerformedBy string            `gorm:"type:varchar(255);not null" json:"performed_by"`
	EntityType  string            `gorm:"type:varchar(50);index" json:"entity_type,omitempty"`
	EntityName  string            `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details     datatypes.JSONMap `gorm:"type:json" json:"details,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"timestamp"`
}

func (h HistoryLog) GetID() string { return h.ID }
