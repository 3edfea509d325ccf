package service

import (
	"context"
	"time"

	"workhours/internal/aggregate"
	"workhours/internal/model"
	"workhours/internal/store"

	"github.com/shopspring/decimal"
)

// SummaryQuery selects the subject and window of an hours total.
// At least one of EmployeeID and SchoolID is required. Date is used by the day
// window, Month and Year by the month and year windows; zero values mean "now".
// The week window is always the current week.
type SummaryQuery struct {
	EmployeeID string
	SchoolID   string
	Period     model.Period
	Date       string
	Month      time.Month
	Year       int
}

type AggregationService interface {
	Window(q SummaryQuery) (aggregate.Window, error)
	Summary(ctx context.Context, q SummaryQuery) (model.HoursSummary, error)
	Overview(ctx context.Context, employeeID, schoolID string) (model.HoursOverview, error)
	HoursBySchoolAndMonth(ctx context.Context, schoolID string, month time.Month, year int) ([]aggregate.EmployeeHours, error)
	SchoolsTouchedByEmployee(ctx context.Context, employeeID string) ([]model.School, error)
	EmployeesTouchedBySchool(ctx context.Context, schoolID string) ([]model.Employee, error)
}

type aggregationService struct {
	store     *store.Store
	now       func() time.Time
	weekStart time.Weekday
}

// NewAggregationService binds the aggregate functions to the store and a clock.
// Windows are built in the clock's location.
func NewAggregationService(st *store.Store, now func() time.Time, weekStart time.Weekday) AggregationService {
	if now == nil {
		now = time.Now
	}
	return &aggregationService{store: st, now: now, weekStart: weekStart}
}

func (s *aggregationService) Window(q SummaryQuery) (aggregate.Window, error) {
	now := s.now()
	loc := now.Location()

	year := q.Year
	if year == 0 {
		year = now.Year()
	}

	switch q.Period {
	case model.PeriodDay:
		if q.Date == "" {
			return aggregate.Day(now), nil
		}
		d, ok := aggregate.ParseDate(q.Date, loc)
		if !ok {
			return aggregate.Window{}, NewValidationError("date", "must be YYYY-MM-DD")
		}
		return aggregate.Day(d), nil
	case model.PeriodWeek:
		return aggregate.Week(now, s.weekStart), nil
	case model.PeriodMonth:
		month := q.Month
		if month == 0 {
			month = now.Month()
		}
		if month < time.January || month > time.December {
			return aggregate.Window{}, NewValidationError("month", "must be between 1 and 12")
		}
		return aggregate.Month(year, month, loc), nil
	case model.PeriodYear:
		return aggregate.Year(year, loc), nil
	}
	return aggregate.Window{}, NewValidationError("period", "must be one of day, week, month, year")
}

func (s *aggregationService) Summary(_ context.Context, q SummaryQuery) (model.HoursSummary, error) {
	if q.EmployeeID == "" && q.SchoolID == "" {
		return model.HoursSummary{}, NewValidationError("employee_id", "employee_id or school_id is required")
	}
	w, err := s.Window(q)
	if err != nil {
		return model.HoursSummary{}, err
	}
	return s.total(s.store.WorkEntries.All(), q.EmployeeID, q.SchoolID, q.Period, w), nil
}

// Overview computes the day, week, month and year totals anchored to now
func (s *aggregationService) Overview(ctx context.Context, employeeID, schoolID string) (model.HoursOverview, error) {
	var out model.HoursOverview
	targets := []struct {
		period model.Period
		dst    *model.HoursSummary
	}{
		{model.PeriodDay, &out.Day},
		{model.PeriodWeek, &out.Week},
		{model.PeriodMonth, &out.Month},
		{model.PeriodYear, &out.Year},
	}
	for _, t := range targets {
		sum, err := s.Summary(ctx, SummaryQuery{EmployeeID: employeeID, SchoolID: schoolID, Period: t.period})
		if err != nil {
			return model.HoursOverview{}, err
		}
		*t.dst = sum
	}
	return out, nil
}

func (s *aggregationService) HoursBySchoolAndMonth(_ context.Context, schoolID string, month time.Month, year int) ([]aggregate.EmployeeHours, error) {
	if _, ok := s.store.Schools.Get(schoolID); !ok {
		return nil, notFound("school", schoolID)
	}
	if month < time.January || month > time.December {
		return nil, NewValidationError("month", "must be between 1 and 12")
	}
	return aggregate.HoursBySchoolAndMonth(
		s.store.WorkEntries.All(), s.store.Employees.All(),
		schoolID, month, year, s.now().Location(),
	), nil
}

func (s *aggregationService) SchoolsTouchedByEmployee(_ context.Context, employeeID string) ([]model.School, error) {
	if _, ok := s.store.Employees.Get(employeeID); !ok {
		return nil, notFound("employee", employeeID)
	}
	return aggregate.SchoolsTouchedByEmployee(s.store.WorkEntries.All(), s.store.Schools.All(), employeeID), nil
}

func (s *aggregationService) EmployeesTouchedBySchool(_ context.Context, schoolID string) ([]model.Employee, error) {
	if _, ok := s.store.Schools.Get(schoolID); !ok {
		return nil, notFound("school", schoolID)
	}
	return aggregate.EmployeesTouchedBySchool(s.store.WorkEntries.All(), s.store.Employees.All(), schoolID), nil
}

func (s *aggregationService) total(entries []model.WorkEntry, employeeID, schoolID string, period model.Period, w aggregate.Window) model.HoursSummary {
	var hours decimal.Decimal
	switch {
	case employeeID != "" && schoolID != "":
		hours = aggregate.TotalHoursForEmployeeAndSchool(entries, employeeID, schoolID, w)
	case employeeID != "":
		hours = aggregate.TotalHoursForEmployee(entries, employeeID, w)
	default:
		hours = aggregate.TotalHoursForSchool(entries, schoolID, w)
	}
	return model.HoursSummary{
		EmployeeID: employeeID,
		SchoolID:   schoolID,
		Period:     period,
		Start:      w.Start,
		End:        w.End,
		Hours:      hours,
	}
}
