package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
	"github.com/srbenoit/mathops-db-sub013/pkg/response"
)

// ContextUserKey is the gin context key storing the caller's token claims.
const ContextUserKey = "currentUser"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT rejects requests without a valid bearer token and stores the claims for later handlers.
func JWT(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, err)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abort(c, err)
			return
		}
		if claims.UserID == "" || claims.Role == "" {
			abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no user or role"))
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims stored by JWT, or nil on unauthenticated routes.
func CurrentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return token, nil
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
