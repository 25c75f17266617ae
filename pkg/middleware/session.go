package middleware

import (
	"net/http"
	"unicode"

	"github.com/gin-gonic/gin"
)

const (
	// SlotKey is the gin context key holding the document slot of a request.
	SlotKey         = "slot"
	SessionIDHeader = "X-Session-ID"
	maxSessionIDLen = 128
)

// SessionSlot selects the document slot for each request: the authenticated
// subject, then the X-Session-ID header, then the shared default slot ("").
// Must run after AuthMiddleware when auth is enabled.
func SessionSlot() gin.HandlerFunc {
	return func(c *gin.Context) {
		slot := ""
		if sub := Subject(c); sub != "" {
			slot = "sub:" + sub
		} else if sid := c.GetHeader(SessionIDHeader); sid != "" {
			if !validSessionID(sid) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + SessionIDHeader})
				return
			}
			slot = "sid:" + sid
		}
		c.Set(SlotKey, slot)
		c.Next()
	}
}

// Slot returns the slot chosen by SessionSlot, "" when none was set.
func Slot(c *gin.Context) string {
	return c.GetString(SlotKey)
}

func validSessionID(s string) bool {
	if len(s) > maxSessionIDLen {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}
