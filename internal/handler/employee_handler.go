package handler

import (
	"net/http"

	"workhours/internal/middleware"
	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeService service.EmployeeService
	auth            *middleware.Auth
}

// NewEmployeeHandler sets up the routing dependencies for Employee endpoints
func NewEmployeeHandler(employeeService service.EmployeeService, auth *middleware.Auth) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	employees := router.Group("/api/employees")
	employees.Use(h.auth.RequireSession())
	{
		employees.GET("", h.auth.RequirePermission("read"), h.ListEmployees)
		employees.GET("/:id", h.auth.RequirePermission("read"), h.GetEmployee)
		employees.POST("", h.auth.RequirePermission("create"), h.CreateEmployee)
		employees.PUT("/:id", h.auth.RequirePermission("update"), h.UpdateEmployee)
		employees.DELETE("/:id", h.auth.RequirePermission("delete"), h.DeleteEmployee)
	}
}

// ListEmployees handles GET /api/employees
// @Summary      List employees
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        active     query     bool    false  "Only active employees"
// @Param        school_id  query     string  false  "Only employees assigned to this school"
// @Param        role       query     string  false  "Only employees holding this role"
// @Success      200        {object}  response.Response{data=[]model.Employee}
// @Router       /api/employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	filter := service.EmployeeFilter{
		ActiveOnly: c.Query("active") == "true",
		SchoolID:   c.Query("school_id"),
		Role:       c.Query("role"),
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.employeeService.ListEmployees(c.Request.Context(), filter)))
}

// GetEmployee handles GET /api/employees/:id
// @Summary      Get employee
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Employee ID"
// @Success      200  {object}  response.Response{data=model.Employee}
// @Failure      404  {object}  response.Response
// @Router       /api/employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	emp, err := h.employeeService.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, emp))
}

// CreateEmployee handles POST /api/employees
// @Summary      Create employee
// @Description  Validates unique email and username and hashes the password
// @Tags         employees
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateEmployeeRequest  true  "Employee payload"
// @Success      201      {object}  response.Response{data=model.Employee}
// @Failure      400      {object}  response.Response
// @Router       /api/employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	emp, err := h.employeeService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, emp))
}

// UpdateEmployee handles PUT /api/employees/:id
// @Summary      Update employee
// @Description  Refused with 409 when it would demote or deactivate the last active administrator
// @Tags         employees
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Employee ID"
// @Param        payload  body      service.UpdateEmployeeRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Employee}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	emp, err := h.employeeService.UpdateEmployee(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, emp))
}

// DeleteEmployee handles DELETE /api/employees/:id
// @Summary      Delete employee
// @Description  Removes the employee with their work entries and edit records
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Employee ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Employee deleted successfully"))
}
