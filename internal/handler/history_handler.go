package handler

import (
	"net/http"

	"workhours/internal/middleware"
	"workhours/internal/service"
	"workhours/pkg/pagination"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	historyService service.HistoryService
	auth           *middleware.Auth
}

func NewHistoryHandler(historyService service.HistoryService, auth *middleware.Auth) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, auth: auth}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/history")
	group.Use(h.auth.RequireSession(), h.auth.RequirePermission("read"))
	{
		group.GET("", h.GetHistory)
		group.GET("/actions", h.GetActions)
	}
}

// GetHistory returns the history log newest first
// @Summary      Get history
// @Description  Error entries are hidden unless include_errors=true or action=Error
// @Tags         history
// @Security     BearerAuth
// @Produce      json
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Param        action          query     string  false  "Filter by action"
// @Param        entity_type     query     string  false  "Filter by entity type"
// @Param        include_errors  query     bool    false  "Include refused operations"
// @Success      200             {object}  response.Response{data=response.PagedData}
// @Router       /api/history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.historyService.List(c.Request.Context(), service.HistoryFilter{
		Action:        c.Query("action"),
		EntityType:    c.Query("entity_type"),
		IncludeErrors: c.Query("include_errors") == "true",
		Paging:        p,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, p.Page, p.Limit, total))
}

// GetActions returns the canonical action vocabulary
// @Summary      History actions
// @Tags         history
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/history/actions [get]
func (h *HistoryHandler) GetActions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.historyService.CanonicalActions()))
}
