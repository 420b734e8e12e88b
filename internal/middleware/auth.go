// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unique-collection/catalog/internal/i18n"
	"github.com/unique-collection/catalog/internal/utils"
)

const adminTokenCookie = "admin_token"

// AdminRequired guards the admin surface with an HS256 bearer token signed
// with secret. An empty secret leaves the routes open.
func AdminRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		lang := utils.GetLangFromContext(c)

		token, ok := extractToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		claims, err := utils.ValidateAdminJWT(secret, token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}

// extractToken reads "Authorization: Bearer <token>" and falls back to the
// admin cookie used by browser sessions.
func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := c.Cookie(adminTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}

	return "", false
}
