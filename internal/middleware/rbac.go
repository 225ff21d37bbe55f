package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
	"github.com/giron-dev/giron-api/pkg/response"
	"github.com/giron-dev/giron-api/pkg/token"
)

// SelfRole marks a route as accessible to the account named by the
// :username path parameter.
const SelfRole = "SELF"

// CurrentClaims returns the access token claims stored by the JWT middleware.
func CurrentClaims(c *gin.Context) (*token.Claims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}

// RBAC enforces role-based access control for routes. Roles are matched
// against the token's role claim; SelfRole matches when the :username path
// parameter equals the token's subject.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowSelf := false
		allowedRoles := make(map[string]struct{})
		for _, a := range allowed {
			if a == SelfRole {
				allowSelf = true
				continue
			}
			allowedRoles[a] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if target := c.Param("username"); target != "" && target == claims.Username {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireAdmin restricts a route to admin accounts.
func RequireAdmin() gin.HandlerFunc {
	return RBAC(string(models.RoleAdmin))
}

// RequireSelfOrAdmin restricts a route to the account it targets or an admin.
func RequireSelfOrAdmin() gin.HandlerFunc {
	return RBAC(SelfRole, string(models.RoleAdmin))
}
