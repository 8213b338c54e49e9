package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barruu/console/internal/core/api"
	logicv1 "github.com/barruu/console/internal/logic/v1"
)

// respondError maps facade errors onto HTTP status codes. The taxonomy
// separates "log in again" (401), "not allowed" (403), "fix the request"
// (4xx) and "try again" (502/503) so the dashboards can react differently.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, logicv1.ErrNotAuthenticated),
		errors.Is(err, logicv1.ErrSessionExpired),
		errors.Is(err, logicv1.ErrInvalidCredentials),
		errors.Is(err, api.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})

	case errors.Is(err, api.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})

	case errors.Is(err, logicv1.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})

	case errors.Is(err, logicv1.ErrInvalidTransition),
		errors.Is(err, logicv1.ErrInvalidMediaType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})

	case errors.Is(err, logicv1.ErrRejected):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})

	case errors.Is(err, api.ErrUnreachable):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "barruu api unreachable"})

	default:
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			c.JSON(statusErr.Status, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
