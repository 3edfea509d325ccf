package aggregate

import (
	"time"

	"workhours/internal/model"

	"github.com/shopspring/decimal"
)

// EmployeeHours pairs an employee with the hours they logged
type EmployeeHours struct {
	Employee model.Employee  `json:"employee"`
	Hours    decimal.Decimal `json:"hours"`
}

func sumHours(entries []model.WorkEntry, w Window, keep func(model.WorkEntry) bool) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if keep(e) && w.ContainsDate(e.Date) {
			total = total.Add(e.Hours)
		}
	}
	return total
}

// TotalHoursForEmployee sums the hours employeeID logged inside w
func TotalHoursForEmployee(entries []model.WorkEntry, employeeID string, w Window) decimal.Decimal {
	return sumHours(entries, w, func(e model.WorkEntry) bool {
		return e.EmployeeID == employeeID
	})
}

// TotalHoursForSchool sums the hours logged at schoolID inside w
func TotalHoursForSchool(entries []model.WorkEntry, schoolID string, w Window) decimal.Decimal {
	return sumHours(entries, w, func(e model.WorkEntry) bool {
		return e.SchoolID == schoolID
	})
}

// TotalHoursForEmployeeAndSchool sums the hours employeeID logged at schoolID inside w
func TotalHoursForEmployeeAndSchool(entries []model.WorkEntry, employeeID, schoolID string, w Window) decimal.Decimal {
	return sumHours(entries, w, func(e model.WorkEntry) bool {
		return e.EmployeeID == employeeID && e.SchoolID == schoolID
	})
}

// HoursBySchoolAndMonth groups the month's entries at schoolID by employee and
// joins each group to its Employee. Groups keep the order in which the employee
// first appears in entries; groups whose employee no longer exists are dropped.
func HoursBySchoolAndMonth(entries []model.WorkEntry, employees []model.Employee, schoolID string, month time.Month, year int, loc *time.Location) []EmployeeHours {
	w := Month(year, month, loc)

	var order []string
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.SchoolID != schoolID || !w.ContainsDate(e.Date) {
			continue
		}
		if _, seen := totals[e.EmployeeID]; !seen {
			order = append(order, e.EmployeeID)
			totals[e.EmployeeID] = decimal.Zero
		}
		totals[e.EmployeeID] = totals[e.EmployeeID].Add(e.Hours)
	}

	byID := make(map[string]model.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	out := make([]EmployeeHours, 0, len(order))
	for _, id := range order {
		emp, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, EmployeeHours{Employee: emp, Hours: totals[id]})
	}
	return out
}

// SchoolsTouchedByEmployee returns the distinct schools where employeeID has at
// least one entry, in order of first appearance. Unknown school ids are skipped.
func SchoolsTouchedByEmployee(entries []model.WorkEntry, schools []model.School, employeeID string) []model.School {
	byID := make(map[string]model.School, len(schools))
	for _, s := range schools {
		byID[s.ID] = s
	}

	seen := make(map[string]bool)
	var out []model.School
	for _, e := range entries {
		if e.EmployeeID != employeeID || seen[e.SchoolID] {
			continue
		}
		seen[e.SchoolID] = true
		if s, ok := byID[e.SchoolID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// EmployeesTouchedBySchool returns the union of employees with at least one entry
// at schoolID (in order of first appearance) and employees whose assigned schools
// include schoolID (in collection order), without duplicates.
func EmployeesTouchedBySchool(entries []model.WorkEntry, employees []model.Employee, schoolID string) []model.Employee {
	byID := make(map[string]model.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	seen := make(map[string]bool)
	var out []model.Employee
	for _, e := range entries {
		if e.SchoolID != schoolID || seen[e.EmployeeID] {
			continue
		}
		seen[e.EmployeeID] = true
		if emp, ok := byID[e.EmployeeID]; ok {
			out = append(out, emp)
		}
	}
	for _, emp := range employees {
		if !seen[emp.ID] && emp.IsAssignedTo(schoolID) {
			seen[emp.ID] = true
			out = append(out, emp)
		}
	}
	return out
}
