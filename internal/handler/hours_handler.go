package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"workhours/internal/middleware"
	"workhours/internal/model"
	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HoursHandler struct {
	aggregationService service.AggregationService
	reportService      service.ReportService
	auth               *middleware.Auth
	now                func() time.Time
}

func NewHoursHandler(aggregationService service.AggregationService, reportService service.ReportService, auth *middleware.Auth, now func() time.Time) *HoursHandler {
	if now == nil {
		now = time.Now
	}
	return &HoursHandler{aggregationService: aggregationService, reportService: reportService, auth: auth, now: now}
}

func (h *HoursHandler) RegisterRoutes(router *gin.RouterGroup) {
	hours := router.Group("/api/hours")
	hours.Use(h.auth.RequireSession(), h.auth.RequirePermission("read"))
	{
		hours.GET("/summary", h.GetSummary)
		hours.GET("/overview", h.GetOverview)
		hours.GET("/schools/:id/monthly", h.GetSchoolMonth)
		hours.GET("/schools/:id/monthly/export", h.ExportSchoolMonth)
		hours.GET("/schools/:id/employees", h.GetEmployeesOfSchool)
		hours.GET("/employees/:id/schools", h.GetSchoolsOfEmployee)
	}
}

// monthYear reads the month and year query parameters, defaulting to the current month
func (h *HoursHandler) monthYear(c *gin.Context) (time.Month, int, error) {
	now := h.now()
	month, year := now.Month(), now.Year()
	if m := c.Query("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil {
			return 0, 0, service.NewValidationError("month", "must be a number")
		}
		month = time.Month(parsed)
	}
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			return 0, 0, service.NewValidationError("year", "must be a number")
		}
		year = parsed
	}
	return month, year, nil
}

// @Summary      Hours summary
// @Description  Total hours of an employee, a school or both over one window
// @Tags         hours
// @Security     BearerAuth
// @Produce      json
// @Param        employee_id  query     string  false  "Employee ID"
// @Param        school_id    query     string  false  "School ID"
// @Param        period       query     string  true   "day, week, month or year"
// @Param        date         query     string  false  "Day window date (YYYY-MM-DD)"
// @Param        month        query     int     false  "Month window (1-12)"
// @Param        year         query     int     false  "Month and year window year"
// @Success      200          {object}  response.Response{data=model.HoursSummary}
// @Failure      400          {object}  response.Response
// @Router       /api/hours/summary [get]
func (h *HoursHandler) GetSummary(c *gin.Context) {
	q := service.SummaryQuery{
		EmployeeID: c.Query("employee_id"),
		SchoolID:   c.Query("school_id"),
		Period:     model.Period(c.Query("period")),
		Date:       c.Query("date"),
	}
	if c.Query("month") != "" || c.Query("year") != "" {
		month, year, err := h.monthYear(c)
		if err != nil {
			writeError(c, err)
			return
		}
		q.Month, q.Year = month, year
	}

	summary, err := h.aggregationService.Summary(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// @Summary      Hours overview
// @Description  Day, week, month and year totals anchored to today
// @Tags         hours
// @Security     BearerAuth
// @Produce      json
// @Param        employee_id  query     string  false  "Employee ID"
// @Param        school_id    query     string  false  "School ID"
// @Success      200          {object}  response.Response{data=model.HoursOverview}
// @Failure      400          {object}  response.Response
// @Router       /api/hours/overview [get]
func (h *HoursHandler) GetOverview(c *gin.Context) {
	overview, err := h.aggregationService.Overview(c.Request.Context(), c.Query("employee_id"), c.Query("school_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}

// @Summary      Monthly hours of a school
// @Description  Per-employee totals for one calendar month
// @Tags         hours
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "School ID"
// @Param        month  query     int     false  "Month (1-12), default current"
// @Param        year   query     int     false  "Year, default current"
// @Success      200    {object}  response.Response{data=[]aggregate.EmployeeHours}
// @Failure      404    {object}  response.Response
// @Router       /api/hours/schools/{id}/monthly [get]
func (h *HoursHandler) GetSchoolMonth(c *gin.Context) {
	month, year, err := h.monthYear(c)
	if err != nil {
		writeError(c, err)
		return
	}

	rows, err := h.aggregationService.HoursBySchoolAndMonth(c.Request.Context(), c.Param("id"), month, year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// @Summary      Export monthly hours of a school
// @Tags         hours
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id     path  string  true   "School ID"
// @Param        month  query int     false  "Month (1-12), default current"
// @Param        year   query int     false  "Year, default current"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/hours/schools/{id}/monthly/export [get]
func (h *HoursHandler) ExportSchoolMonth(c *gin.Context) {
	month, year, err := h.monthYear(c)
	if err != nil {
		writeError(c, err)
		return
	}

	data, filename, err := h.reportService.SchoolMonthWorkbook(c.Request.Context(), c.Param("id"), month, year)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// @Summary      Employees of a school
// @Description  Employees assigned to the school or with hours logged there
// @Tags         hours
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "School ID"
// @Success      200  {object}  response.Response{data=[]model.Employee}
// @Failure      404  {object}  response.Response
// @Router       /api/hours/schools/{id}/employees [get]
func (h *HoursHandler) GetEmployeesOfSchool(c *gin.Context) {
	emps, err := h.aggregationService.EmployeesTouchedBySchool(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, emps))
}

// @Summary      Schools of an employee
// @Description  Schools where the employee has hours logged
// @Tags         hours
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Employee ID"
// @Success      200  {object}  response.Response{data=[]model.School}
// @Failure      404  {object}  response.Response
// @Router       /api/hours/employees/{id}/schools [get]
func (h *HoursHandler) GetSchoolsOfEmployee(c *gin.Context) {
	schools, err := h.aggregationService.SchoolsTouchedByEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, schools))
}
