package handler

import (
	"net/http"

	"workhours/internal/middleware"
	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkEntryHandler struct {
	workEntryService service.WorkEntryService
	auth             *middleware.Auth
}

func NewWorkEntryHandler(workEntryService service.WorkEntryService, auth *middleware.Auth) *WorkEntryHandler {
	return &WorkEntryHandler{workEntryService: workEntryService, auth: auth}
}

func (h *WorkEntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/api/work-entries")
	entries.Use(h.auth.RequireSession())
	{
		entries.GET("", h.auth.RequirePermission("read"), h.ListWorkEntries)
		entries.GET("/:id", h.auth.RequirePermission("read"), h.GetWorkEntry)
		entries.GET("/:id/edits", h.auth.RequirePermission("read"), h.GetEditHistory)
		entries.POST("", h.auth.RequirePermission("create"), h.SubmitWorkEntries)
		entries.PUT("/:id", h.auth.RequirePermission("update"), h.UpdateWorkEntry)
		entries.DELETE("/:id", h.auth.RequirePermission("delete"), h.DeleteWorkEntry)
	}

	router.GET("/api/edit-history", h.auth.RequireSession(), h.auth.RequirePermission("read"), h.GetEditHistory)
}

// ListWorkEntries handles GET /api/work-entries
// @Summary      List work entries
// @Tags         work-entries
// @Security     BearerAuth
// @Produce      json
// @Param        employee_id  query     string  false  "Filter by employee"
// @Param        school_id    query     string  false  "Filter by school"
// @Success      200          {object}  response.Response{data=[]model.WorkEntry}
// @Router       /api/work-entries [get]
func (h *WorkEntryHandler) ListWorkEntries(c *gin.Context) {
	filter := service.WorkEntryFilter{
		EmployeeID: c.Query("employee_id"),
		SchoolID:   c.Query("school_id"),
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.workEntryService.ListWorkEntries(c.Request.Context(), filter)))
}

// GetWorkEntry handles GET /api/work-entries/:id
// @Summary      Get work entry
// @Tags         work-entries
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work entry ID"
// @Success      200  {object}  response.Response{data=model.WorkEntry}
// @Failure      404  {object}  response.Response
// @Router       /api/work-entries/{id} [get]
func (h *WorkEntryHandler) GetWorkEntry(c *gin.Context) {
	entry, err := h.workEntryService.GetWorkEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// SubmitWorkEntries handles POST /api/work-entries
// @Summary      Submit work entries
// @Description  Accepts a single entry or an "entries" list. Every entry is validated before any is recorded.
// @Tags         work-entries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SubmitWorkEntriesRequest  true  "One entry or a list of entries"
// @Success      201      {object}  response.Response{data=[]model.WorkEntry}
// @Failure      400      {object}  response.Response
// @Router       /api/work-entries [post]
func (h *WorkEntryHandler) SubmitWorkEntries(c *gin.Context) {
	var req service.SubmitWorkEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	entries, err := h.workEntryService.Submit(c.Request.Context(), req.Submission())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entries))
}

// UpdateWorkEntry handles PUT /api/work-entries/:id
// @Summary      Update work entry
// @Description  A change of hours also appends an edit record
// @Tags         work-entries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Work entry ID"
// @Param        payload  body      service.UpdateWorkEntryRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.WorkEntry}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/work-entries/{id} [put]
func (h *WorkEntryHandler) UpdateWorkEntry(c *gin.Context) {
	var req service.UpdateWorkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if req.Hours != nil {
		if err := service.ValidateHours("hours", *req.Hours); err != nil {
			writeError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	current, err := h.workEntryService.GetWorkEntry(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.workEntryService.UpdateWorkEntry(ctx, req.Apply(current), req.EditedBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// DeleteWorkEntry handles DELETE /api/work-entries/:id
// @Summary      Delete work entry
// @Description  Removes the entry and its edit records
// @Tags         work-entries
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work entry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/work-entries/{id} [delete]
func (h *WorkEntryHandler) DeleteWorkEntry(c *gin.Context) {
	if err := h.workEntryService.DeleteWorkEntry(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Work entry deleted successfully"))
}

// GetEditHistory lists edit records, of one entry when an id is given
// @Summary      Edit history
// @Tags         work-entries
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work entry ID"
// @Success      200  {object}  response.Response{data=[]service.EditHistoryItem}
// @Router       /api/work-entries/{id}/edits [get]
// @Router       /api/edit-history [get]
func (h *WorkEntryHandler) GetEditHistory(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.workEntryService.EditHistory(c.Request.Context(), c.Param("id"))))
}
