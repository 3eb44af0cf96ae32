package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// Policy grants access to a route for a given caller.
type Policy func(c *gin.Context, claims *models.JWTClaims) bool

// Roles allows callers holding any of the roles.
func Roles(roles ...models.UserRole) Policy {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(_ *gin.Context, claims *models.JWTClaims) bool {
		_, ok := allowed[claims.Role]
		return ok
	}
}

// Self allows a student to reach routes about their own record, matched on :studentId.
func Self() Policy {
	return func(c *gin.Context, claims *models.JWTClaims) bool {
		target := c.Param("studentId")
		return claims.Role == models.RoleStudent && target != "" && target == claims.UserID
	}
}

// Authorize lets the request through when any policy grants access. It must run after JWT.
func Authorize(policies ...Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			abort(c, appErrors.ErrUnauthorized)
			return
		}
		for _, allow := range policies {
			if allow(c, claims) {
				c.Next()
				return
			}
		}
		abort(c, appErrors.ErrForbidden)
	}
}

// RequireRoles is shorthand for Authorize(Roles(roles...)).
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return Authorize(Roles(roles...))
}
