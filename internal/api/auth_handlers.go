package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/auth"
	"github.com/rbkantor/eightsleep-nosub-app/internal/service"
)

// CheckLoginState reports whether the caller must (re-)authenticate.
// It is a public endpoint: an absent or invalid cookie is a normal
// answer here, not a rejection.
func CheckLoginState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		loginRequired, err := app.Users().CheckLoginState(c.Request.Context(), c.GetHeader("Cookie"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to check login state")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"loginRequired": loginRequired}, nil)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Invalid JSON")
			return
		}

		sessionToken, err := app.Users().Login(c.Request.Context(), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Login failed")
			return
		}

		auth.SetSessionCookie(c, sessionToken, app.Config())
		HandleSuccess(c, app.Logger(), gin.H{"success": true}, nil)
	}
}

func Logout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearSessionCookie(c, app.Config())
		HandleSuccess(c, app.Logger(), gin.H{"success": true}, nil)
	}
}
