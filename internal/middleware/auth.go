package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ialiagadev/physia-scheduler/internal/config"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
)

const (
	ContextUserID         = "userID"
	ContextOrganizationID = "organizationID"
	ContextUserRole       = "userRole"
)

// AuthMiddleware validates the Bearer token and exposes the caller's user,
// organization and role to handlers.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return func(c *gin.Context) {
		scheme, raw, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			unauthorized(c, "missing_authorization_header")
			return
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc); err != nil {
			unauthorized(c, "invalid_token")
			return
		}

		userID, okUser := numericClaim(claims, "sub")
		organizationID, okOrg := numericClaim(claims, "organizationId")
		if !okUser || !okOrg {
			unauthorized(c, "invalid_token_payload")
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextUserID, userID)
		c.Set(ContextOrganizationID, organizationID)
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

func numericClaim(claims jwt.MapClaims, name string) (uint, bool) {
	v, ok := claims[name].(float64)
	if !ok || v <= 0 {
		return 0, false
	}
	return uint(v), true
}

func unauthorized(c *gin.Context, code string) {
	httperr.Abort(c, http.StatusUnauthorized, code, "Authentication required.")
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Abort(c, http.StatusForbidden, "forbidden", "Your role cannot perform this action.")
	}
}
