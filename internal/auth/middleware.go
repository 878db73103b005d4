package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeySubject = "subject"

// SubjectFromContext returns the subject set by RequireSession. Empty if not set.
func SubjectFromContext(c *gin.Context) string {
	return c.GetString(contextKeySubject)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireSession returns a middleware that checks for a valid bearer token
// and sets the session subject in context. If missing or invalid, responds
// with 401. With allowQuery the token may also come from ?token=, for
// clients such as EventSource that cannot set headers.
func RequireSession(sessions *Store, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		subject, ok, err := sessions.Subject(c.Request.Context(), token)
		if err != nil {
			log.Printf("session lookup: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(contextKeySubject, subject)
		c.Next()
	}
}
