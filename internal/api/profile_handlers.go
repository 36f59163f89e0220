package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/service"
)

func GetTemperatureProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		profile, err := app.Profiles().GetProfile(c.Request.Context(), email)
		if err != nil {
			HandleError(c, app.Logger(), err, "Temperature profile not found for this user")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}

func PutTemperatureProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var req service.TemperatureProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Invalid JSON")
			return
		}

		if err := app.Profiles().UpsertProfile(c.Request.Context(), email, &req); err != nil {
			HandleError(c, app.Logger(), err, "Failed to update temperature profile")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"success": true}, nil)
	}
}

func DeleteTemperatureProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		if err := app.Profiles().DeleteProfile(c.Request.Context(), email); err != nil {
			HandleError(c, app.Logger(), err, "Temperature profile not found for this user")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"success": true}, nil)
	}
}
