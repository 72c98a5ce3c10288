// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/i18n"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/utils"
)

// TokenResolver turns a bearer token into a verified identity.
type TokenResolver interface {
	ResolveToken(token string) (models.Identity, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func AuthRequired(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		if c.GetHeader("Authorization") == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidFormat))
			return
		}

		identity, err := resolver.ResolveToken(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		c.Set(utils.ContextKeyIdentity, identity)
		c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := utils.GetIdentityFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRoleRequired))
	}
}

// OptionalAuth sets the identity when a valid token is present and carries
// on without one otherwise.
func OptionalAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if identity, err := resolver.ResolveToken(token); err == nil {
				c.Set(utils.ContextKeyIdentity, identity)
			}
		}
		c.Next()
	}
}
