package handler

import (
	"net/http"

	"workhours/internal/middleware"
	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

type SchoolHandler struct {
	schoolService service.SchoolService
	auth          *middleware.Auth
}

func NewSchoolHandler(schoolService service.SchoolService, auth *middleware.Auth) *SchoolHandler {
	return &SchoolHandler{schoolService: schoolService, auth: auth}
}

func (h *SchoolHandler) RegisterRoutes(router *gin.RouterGroup) {
	schools := router.Group("/api/schools")
	schools.Use(h.auth.RequireSession())
	{
		schools.GET("", h.auth.RequirePermission("read"), h.ListSchools)
		schools.GET("/:id", h.auth.RequirePermission("read"), h.GetSchool)
		schools.POST("", h.auth.RequirePermission("create"), h.CreateSchool)
		schools.PUT("/:id", h.auth.RequirePermission("update"), h.UpdateSchool)
		schools.DELETE("/:id", h.auth.RequirePermission("delete"), h.DeleteSchool)
	}
}

// ListSchools returns every school
// @Summary      List schools
// @Tags         schools
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.School}
// @Router       /api/schools [get]
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.schoolService.ListSchools(c.Request.Context())))
}

// GetSchool returns a single school
// @Summary      Get school
// @Tags         schools
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "School ID"
// @Success      200  {object}  response.Response{data=model.School}
// @Failure      404  {object}  response.Response
// @Router       /api/schools/{id} [get]
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	school, err := h.schoolService.GetSchool(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, school))
}

// CreateSchool creates a new school
// @Summary      Create school
// @Tags         schools
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.SchoolRequest  true  "School payload"
// @Success      201  {object}  response.Response{data=model.School}
// @Failure      400  {object}  response.Response
// @Router       /api/schools [post]
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req service.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	school, err := h.schoolService.CreateSchool(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, school))
}

// UpdateSchool renames a school
// @Summary      Update school
// @Tags         schools
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "School ID"
// @Param        payload  body  service.SchoolRequest  true  "School payload"
// @Success      200  {object}  response.Response{data=model.School}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/schools/{id} [put]
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	var req service.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	school, err := h.schoolService.UpdateSchool(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, school))
}

// DeleteSchool deletes a school. Without force it is refused while work
// entries reference the school; with force=true the entries go too.
// @Summary      Delete school
// @Tags         schools
// @Security     BearerAuth
// @Produce      json
// @Param        id     path   string  true   "School ID"
// @Param        force  query  bool    false  "Also delete the school's work entries"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/schools/{id} [delete]
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id := c.Param("id")

	var err error
	if c.Query("force") == "true" {
		err = h.schoolService.DeleteSchoolAndResetHours(c.Request.Context(), id)
	} else {
		err = h.schoolService.DeleteSchool(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "School deleted successfully"))
}
