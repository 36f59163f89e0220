package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rbkantor/eightsleep-nosub-app/internal/auth"
)

// RegisterRoutes wires the full HTTP surface onto the engine. Login,
// logout and the login-state check are public; everything else sits
// behind the session middleware.
func RegisterRoutes(r *gin.Engine, app App, loginLimiter *LoginRateLimiter) {
	r.Use(RequestIDMiddleware())
	r.Use(MetricsMiddleware(app.Metrics()))

	r.GET("/api/login-state", CheckLoginState(app))
	r.POST("/api/login", loginLimiter.Middleware(), Login(app))
	r.POST("/api/logout", Logout(app))

	protected := r.Group("/api")
	protected.Use(auth.SessionMiddleware(app.Config()))
	protected.GET("/temperature-profile", GetTemperatureProfile(app))
	protected.PUT("/temperature-profile", PutTemperatureProfile(app))
	protected.DELETE("/temperature-profile", DeleteTemperatureProfile(app))
	protected.GET("/temperature-intervals", GetTemperatureIntervals(app))
}
