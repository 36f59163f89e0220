package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/response"
)

// HandleError converts an error into the typed, user-safe response for
// its category. Unrecognized errors are logged with the request ID and
// reported as a generic 500 so internals never leak.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")

	var validationErr *internal.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(400, response.BadRequest(msg+": "+validationErr.Reason))
	case errors.Is(err, internal.ErrUnauthenticated):
		c.JSON(401, response.Unauthenticated())
	case errors.Is(err, internal.ErrProviderAuth):
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(401, response.NewAppError(401, "Authentication failed. Please log in again."))
	case errors.Is(err, internal.ErrNotApproved):
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(403, response.NewAppError(403, "Email not approved"))
	case errors.Is(err, internal.ErrNotFound):
		c.JSON(404, response.NotFound(msg))
	default:
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(500, response.InternalError(msg))
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}
