package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period names a calendar window kind
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether p is one of the four window kinds
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// HoursSummary is the hour total of an employee, a school, or both inside one window
type HoursSummary struct {
	EmployeeID string          `json:"employee_id,omitempty"`
	SchoolID   string          `json:"school_id,omitempty"`
	Period     Period          `json:"period"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Hours      decimal.Decimal `json:"hours"`
}

// HoursOverview bundles the day, week, month and year totals around now
type HoursOverview struct {
	Day   HoursSummary `json:"day"`
	Week  HoursSummary `json:"week"`
	Month HoursSummary `json:"month"`
	Year  HoursSummary `json:"year"`
}
