package handler

import (
	"net/http"

	"workhours/internal/middleware"
	"workhours/internal/model"
	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions service.SessionService
	roles    service.RoleService
	auth     *middleware.Auth
}

// NewAuthHandler sets up the routing dependencies for session endpoints
func NewAuthHandler(sessions service.SessionService, roles service.RoleService, auth *middleware.Auth) *AuthHandler {
	return &AuthHandler{sessions: sessions, roles: roles, auth: auth}
}

// MeResponse is the current principal with the permissions of their role
type MeResponse struct {
	Employee    model.Employee    `json:"employee"`
	SessionID   string            `json:"session_id"`
	Permissions model.Permissions `json:"permissions"`
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.auth.RequireSession(), h.Me)
	}
}

// Login handles POST /api/auth/login
// @Summary      Log in
// @Description  Checks the credentials of an active employee and opens a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.Session}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.auth.SetSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sess))
}

// Logout handles POST /api/auth/logout. It always succeeds.
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, ok := middleware.Token(c); ok {
		if sid, err := h.sessions.ParseToken(token); err == nil {
			_ = h.sessions.Logout(c.Request.Context(), sid)
		}
	}
	h.auth.ClearSessionCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// Me returns the session principal
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Session not found in context"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, MeResponse{
		Employee:    sess.Principal,
		SessionID:   sess.ID,
		Permissions: h.roles.PermissionsOf(c.Request.Context(), sess.Principal.Role),
	}))
}
