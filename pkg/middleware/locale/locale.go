package locale

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/university-admin-api/pkg/i18n"
)

const (
	headerKey  = "Accept-Language"
	contextKey = "lang"
)

// Middleware resolves the response language from the Accept-Language header.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := i18n.Resolve(c.GetHeader(headerKey))
		c.Set(contextKey, lang)
		c.Writer.Header().Set("Content-Language", lang)
		c.Next()
	}
}

// Value returns the language stored in the Gin context. Requests that bypassed
// the middleware are resolved directly from the header.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if lang, ok := v.(string); ok {
			return lang
		}
	}
	if c.Request != nil {
		return i18n.Resolve(c.GetHeader(headerKey))
	}
	return i18n.LangEnglish
}

// T translates key into the request language.
func T(c *gin.Context, key string) string {
	return i18n.Translate(Value(c), key)
}
