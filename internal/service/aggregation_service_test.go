package service

import (
	"context"
	"testing"
	"time"

	"workhours/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregation_SummaryWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.employee(t, "Ana", "", true)
	a := f.school(t, "A")
	b := f.school(t, "B")
	// now is Wednesday 2023-09-13
	f.workEntry(t, emp, a, "2023-09-13", 2)
	f.workEntry(t, emp, b, "2023-09-10", 3) // Sunday, same week
	f.workEntry(t, emp, a, "2023-09-09", 4) // Saturday, previous week
	f.workEntry(t, emp, a, "2023-08-31", 5)

	overview, err := f.aggregation.Overview(ctx, emp.ID, "")
	require.NoError(t, err)
	assert.True(t, overview.Day.Hours.Equal(decimal.NewFromInt(2)), overview.Day.Hours.String())
	assert.True(t, overview.Week.Hours.Equal(decimal.NewFromInt(5)), overview.Week.Hours.String())
	assert.True(t, overview.Month.Hours.Equal(decimal.NewFromInt(9)), overview.Month.Hours.String())
	assert.True(t, overview.Year.Hours.Equal(decimal.NewFromInt(14)), overview.Year.Hours.String())

	both, err := f.aggregation.Summary(ctx, SummaryQuery{EmployeeID: emp.ID, SchoolID: a.ID, Period: model.PeriodMonth, Month: time.August, Year: 2023})
	require.NoError(t, err)
	assert.True(t, both.Hours.Equal(decimal.NewFromInt(5)))

	school, err := f.aggregation.Summary(ctx, SummaryQuery{SchoolID: b.ID, Period: model.PeriodDay, Date: "2023-09-10"})
	require.NoError(t, err)
	assert.True(t, school.Hours.Equal(decimal.NewFromInt(3)))
}

func TestAggregation_SummaryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.aggregation.Summary(ctx, SummaryQuery{Period: model.PeriodDay})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.aggregation.Summary(ctx, SummaryQuery{EmployeeID: "e", Period: "decade"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.aggregation.Summary(ctx, SummaryQuery{EmployeeID: "e", Period: model.PeriodMonth, Month: 13})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAggregation_TouchedViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.employee(t, "Ana", "", true)
	a := f.school(t, "A")
	b := f.school(t, "B")
	f.workEntry(t, ana, b, "2023-09-01", 1)
	f.workEntry(t, ana, a, "2023-09-02", 1)
	luis, err := f.employees.CreateEmployee(ctx, CreateEmployeeRequest{Name: "Luis", AssignedSchools: []string{a.ID}})
	require.NoError(t, err)

	schools, err := f.aggregation.SchoolsTouchedByEmployee(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, schools, 2)
	assert.Equal(t, b.ID, schools[0].ID)

	emps, err := f.aggregation.EmployeesTouchedBySchool(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, ana.ID, emps[0].ID)
	assert.Equal(t, luis.ID, emps[1].ID)

	_, err = f.aggregation.EmployeesTouchedBySchool(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAggregation_HoursBySchoolAndMonth(t *testing.T) {
	f := newFixture(t)
	ana := f.employee(t, "Ana", "", true)
	a := f.school(t, "A")
	f.workEntry(t, ana, a, "2023-09-01", 3)
	f.workEntry(t, ana, a, "2023-09-30", 4)
	f.workEntry(t, ana, a, "2023-10-01", 5)

	rows, err := f.aggregation.HoursBySchoolAndMonth(context.Background(), a.ID, time.September, 2023)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Hours.Equal(decimal.NewFromInt(7)))
}
