// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ifm-backend/internal/i18n"
	"github.com/javajoker/ifm-backend/internal/utils"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ContextKeyLang, negotiateLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// negotiateLanguage picks the first supported language from an
// Accept-Language header such as "ja-JP,ja;q=0.9,en;q=0.8".
func negotiateLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		if i18n.IsSupported(base) {
			return base
		}
	}
	return i18n.DefaultLang()
}
