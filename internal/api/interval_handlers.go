package api

import (
	"github.com/gin-gonic/gin"
)

// GetTemperatureIntervals loads the caller's credential, refreshes it
// if expired and fetches interval telemetry through the fallback tiers.
// Only the auth/credential steps can fail; the fetch itself always
// produces a successful envelope.
func GetTemperatureIntervals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")
		ctx := c.Request.Context()

		user, err := app.Users().GetUser(ctx, email)
		if err != nil {
			HandleError(c, app.Logger(), err, "User not found")
			return
		}

		user, err = app.Users().EnsureFreshToken(ctx, user)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to refresh provider token")
			return
		}

		result := app.Intervals().FetchTemperatureIntervals(ctx, user)
		HandleSuccess(c, app.Logger(), result, nil)
	}
}
