// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unique-collection/catalog/internal/i18n"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", preferredLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// preferredLanguage picks the first tag of an Accept-Language header that
// has a loaded locale, matching on the primary subtag.
func preferredLanguage(header string) string {
	supported := i18n.GetSupportedLanguages()
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		primary := strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		for _, lang := range supported {
			if lang == primary {
				return lang
			}
		}
	}
	return "en"
}
