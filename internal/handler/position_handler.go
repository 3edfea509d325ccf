package handler

import (
	"net/http"

	"workhours/internal/middleware"
	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

type PositionHandler struct {
	positionService service.PositionService
	auth            *middleware.Auth
}

func NewPositionHandler(positionService service.PositionService, auth *middleware.Auth) *PositionHandler {
	return &PositionHandler{positionService: positionService, auth: auth}
}

func (h *PositionHandler) RegisterRoutes(router *gin.RouterGroup) {
	positions := router.Group("/api/positions")
	positions.Use(h.auth.RequireSession())
	{
		positions.GET("", h.auth.RequirePermission("read"), h.ListPositions)
		positions.POST("", h.auth.RequirePermission("create"), h.CreatePosition)
		positions.PUT("/:id", h.auth.RequirePermission("update"), h.UpdatePosition)
		positions.DELETE("/:id", h.auth.RequirePermission("delete"), h.DeletePosition)
	}
}

// @Summary  List positions
// @Tags     positions
// @Security BearerAuth
// @Produce  json
// @Success  200  {object}  response.Response{data=[]model.Position}
// @Router   /api/positions [get]
func (h *PositionHandler) ListPositions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.positionService.ListPositions(c.Request.Context())))
}

// @Summary  Create position
// @Tags     positions
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    payload  body      service.PositionRequest  true  "Position payload"
// @Success  201      {object}  response.Response{data=model.Position}
// @Failure  400      {object}  response.Response
// @Router   /api/positions [post]
func (h *PositionHandler) CreatePosition(c *gin.Context) {
	var req service.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	pos, err := h.positionService.CreatePosition(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pos))
}

// UpdatePosition renames a position and every employee holding it
// @Summary  Update position
// @Tags     positions
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id       path      string                   true  "Position ID"
// @Param    payload  body      service.PositionRequest  true  "Position payload"
// @Success  200      {object}  response.Response{data=model.Position}
// @Failure  400      {object}  response.Response
// @Failure  404      {object}  response.Response
// @Router   /api/positions/{id} [put]
func (h *PositionHandler) UpdatePosition(c *gin.Context) {
	var req service.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	pos, err := h.positionService.UpdatePosition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pos))
}

// @Summary  Delete position
// @Tags     positions
// @Security BearerAuth
// @Produce  json
// @Param    id   path      string  true  "Position ID"
// @Success  200  {object}  response.Response
// @Failure  404  {object}  response.Response
// @Router   /api/positions/{id} [delete]
func (h *PositionHandler) DeletePosition(c *gin.Context) {
	if err := h.positionService.DeletePosition(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Position deleted successfully"))
}
