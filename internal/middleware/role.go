package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
)

// RequireRole lets the request through only when the authenticated user has
// one of roles. It must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !slices.Contains(roles, user.Role) {
			apierrors.Forbidden(c, "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}
