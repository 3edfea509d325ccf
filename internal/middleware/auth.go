package middleware

import (
	"net/http"
	"strings"

	"workhours/internal/service"
	"workhours/pkg/ctxutil"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// SessionKey holds the restored service.Session on the gin context
	SessionKey = "session"

	sessionCookie = "access_token"
)

// Auth restores the session behind a request and checks role permissions
type Auth struct {
	sessions  service.SessionService
	roles     service.RoleService
	secure    bool
	cookieTTL int
}

// NewAuth builds the auth middleware. secure marks the session cookie
// SameSite=None and Secure, as needed for cross-origin production frontends.
func NewAuth(sessions service.SessionService, roles service.RoleService, secure bool, cookieTTLSeconds int) *Auth {
	return &Auth{sessions: sessions, roles: roles, secure: secure, cookieTTL: cookieTTLSeconds}
}

// SetSessionCookie stores the session token as an HttpOnly cookie
func (a *Auth) SetSessionCookie(c *gin.Context, token string) {
	a.sameSite(c)
	c.SetCookie(sessionCookie, token, a.cookieTTL, "/", "", a.secure, true)
}

// ClearSessionCookie removes the session cookie
func (a *Auth) ClearSessionCookie(c *gin.Context) {
	a.sameSite(c)
	c.SetCookie(sessionCookie, "", -1, "/", "", a.secure, true)
}

func (a *Auth) sameSite(c *gin.Context) {
	if a.secure {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

// Token extracts the session token, cookie first, then the Authorization header
func Token(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token, true
	}
	header := c.GetHeader("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Restore resolves a token into its live session
func (a *Auth) Restore(c *gin.Context, token string) (service.Session, error) {
	sid, err := a.sessions.ParseToken(token)
	if err != nil {
		return service.Session{}, err
	}
	return a.sessions.Restore(c.Request.Context(), sid)
}

// RequireSession rejects requests without a live session and puts the
// principal on the request context as the acting employee.
func (a *Auth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := Token(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		sess, err := a.Restore(c, token)
		if err != nil {
			a.ClearSessionCookie(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Session expired"))
			return
		}

		ctx := ctxutil.WithActor(c.Request.Context(), ctxutil.Actor{
			EmployeeID: sess.Principal.ID,
			Name:       sess.Principal.Name,
			Role:       sess.Principal.Role,
			SessionID:  sess.ID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// RequirePermission checks one CRUD flag of the principal's role.
// It must run after RequireSession.
func (a *Auth) RequirePermission(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		if !a.roles.PermissionsOf(c.Request.Context(), sess.Principal.Role).Allows(op) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+op+"'"))
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session restored by RequireSession
func CurrentSession(c *gin.Context) (service.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return service.Session{}, false
	}
	sess, ok := v.(service.Session)
	return sess, ok
}
