package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-routine-api/internal/models"
	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
	"github.com/noah-isme/class-routine-api/pkg/response"
)

// SelfAccess lets a caller through when the :id route parameter is their own user id.
const SelfAccess = "SELF"

// RBAC enforces role-based access control for routes. SUPERADMIN always passes.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := map[models.UserRole]struct{}{models.RoleSuperAdmin: {}}
	for _, a := range allowed {
		if a == SelfAccess {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
