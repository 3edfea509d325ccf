package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage format of WorkEntry.Date
const DateLayout = "2006-01-02"

// WorkEntry is one logged block of hours for one employee at one school on one date
type WorkEntry struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	EmployeeID   string          `gorm:"type:varchar(36);not null;index" json:"employee_id"`
	SchoolID     string          `gorm:"type:varchar(36);not null;index" json:"school_id"`
	Date         string          `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD, local calendar date
	Hours        decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hours"`
	StartTime    string          `gorm:"type:varchar(5)" json:"start_time,omitempty"` // HH:MM
	EndTime      string          `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	LastEditedBy string          `gorm:"type:varchar(255);not null" json:"last_edited_by"`
	LastEditedAt time.Time       `gorm:"not null" json:"last_edited_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (w WorkEntry) GetID() string { return w.ID }

// EditRecord is the immutable audit row of a single hours change on a WorkEntry
type EditRecord struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkEntryID   string          `gorm:"type:varchar(36);not null;index" json:"work_entry_id"`
	EditedBy      string          `gorm:"type:varchar(255);not null" json:"edited_by"`
	EditedAt      time.Time       `gorm:"not null" json:"edited_at"`
	PreviousHours decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"previous_hours"`
	NewHours      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"new_hours"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (e EditRecord) GetID() string { return e.ID }
