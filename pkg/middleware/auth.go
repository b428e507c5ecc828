package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"dataset-feedback/backend/internal/auth"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/jwt"
)

const callerKey = "caller"

// Auth validates the bearer token and attaches the Caller to the context.
// When required is false, anonymous requests pass through with no caller;
// a present but invalid token is still rejected.
func Auth(jwtService *jwt.Service, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Authorization header is required"))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Authorization header must be a bearer token"))
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(callerKey, auth.Caller{
			UserID:    claims.UserID,
			Sysadmin:  claims.Sysadmin,
			AdminOrgs: claims.AdminOrgs,
		})
		c.Next()
	}
}

// CallerFrom extracts the authenticated caller, if any.
func CallerFrom(c *gin.Context) (auth.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return auth.Caller{}, false
	}
	caller, ok := v.(auth.Caller)
	return caller, ok
}
