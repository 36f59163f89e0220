package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rbkantor/eightsleep-nosub-app/internal/config"
	"github.com/rbkantor/eightsleep-nosub-app/internal/response"
)

// SessionMiddleware verifies the session cookie and stores the caller's
// email in the gin context. Requests failing verification are rejected
// as "login required" before any handler runs.
func SessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := VerifyCookieHeader(c.GetHeader("Cookie"), cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthenticated())
			return
		}
		c.Set("email", email)
		c.Next()
	}
}

// SetSessionCookie attaches a fresh session cookie to the response.
// Secure is only set in production so local development over plain HTTP
// keeps working.
func SetSessionCookie(c *gin.Context, token string, cfg *config.Config) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(SessionTTL.Seconds()), "/", "", cfg.Env == "production", true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", cfg.Env == "production", true)
}
