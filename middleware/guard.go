package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
)

// Guard redirect targets and the gin context key the guard stores the
// validated user under.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"

	userContextKey = "barruu_user"
)

// UserSource is the slice of the auth facade the guard needs: a synchronous
// token-presence check and a server-side session refresh.
type UserSource interface {
	IsAuthenticated() (bool, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Guard gates a route group behind authentication and a required role.
//
// With no token present it redirects to the login page without issuing any
// API call. Otherwise it refreshes the session; a rejected session
// redirects to login, while an unreachable API answers 503 so a network
// blip never logs the operator out. A valid user whose role does not
// satisfy the requirement is redirected to the unauthorized page. On
// success the user is stored in the request context for handlers.
func Guard(users UserSource, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zerolog.Ctx(c.Request.Context())

		ok, err := users.IsAuthenticated()
		if err != nil {
			logger.Error().Err(err).Msg("Session store read failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		if !ok {
			redirect(c, LoginPath)
			return
		}

		user, err := users.CurrentUser(c.Request.Context())
		if err != nil {
			if errors.Is(err, api.ErrUnreachable) {
				logger.Warn().Err(err).Msg("Session refresh unreachable")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "api unreachable, try again"})
				return
			}
			logger.Warn().Err(err).Msg("Session refresh rejected")
			redirect(c, LoginPath)
			return
		}

		if !user.Role.Satisfies(required) {
			logger.Warn().
				Str("user_id", user.ID).
				Str("role", string(user.Role)).
				Str("required", string(required)).
				Msg("Role check failed")
			redirect(c, UnauthorizedPath)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// GuardedUser returns the user the guard validated for this request, or nil
// on an unguarded route.
func GuardedUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

func redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}
