package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys shared by the login handler and the middleware.
const (
	SessionAdminID   = "admin_id"
	SessionAdminName = "admin_name"
)

// LoginRequired gates administrative routes behind an active session.
// Unauthenticated requests are redirected to the login form with the intended
// destination preserved; authenticated requests get their session lifetime
// extended.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(SessionAdminID) == nil {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		// Touch the session so the cookie expiry slides forward.
		session.Set(SessionAdminID, session.Get(SessionAdminID))
		_ = session.Save()
		c.Next()
	}
}

// DeviceAuth enforces bearer JWT tokens signed with HS256 on the kiosk API.
func DeviceAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}
