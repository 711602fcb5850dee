package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionKeyName is the context key and cookie name for the storefront
// session, which scopes each visitor's cart.
const SessionKeyName = "otter_session"

// SessionHeader lets PWA clients without cookie support pass the session.
const SessionHeader = "X-Session-Key"

// SessionMiddleware assigns every visitor a stable session key. An existing
// cookie or header wins; otherwise a fresh key is minted and set as a
// cookie. Handlers read it from the gin context.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionKey := c.GetHeader(SessionHeader)
		if sessionKey == "" {
			if cookie, err := c.Cookie(SessionKeyName); err == nil {
				sessionKey = cookie
			}
		}
		if sessionKey == "" {
			sessionKey = uuid.NewString()
			// 30 days; the cart snapshot outlives the browser tab.
			c.SetCookie(SessionKeyName, sessionKey, 30*24*3600, "/", "", false, true)
		}

		c.Set(SessionKeyName, sessionKey)
		c.Next()
	}
}

// SessionKey returns the session assigned by SessionMiddleware.
func SessionKey(c *gin.Context) string {
	if v, exists := c.Get(SessionKeyName); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
