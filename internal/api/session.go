package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "session_id"

	sessionCookieMaxAge = 30 * 24 * 60 * 60
)

// sessionID returns the caller's session id from the header or cookie, issuing
// a new cookie when neither is present.
func sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, sessionCookieMaxAge, "/", "", false, true)
	return id
}
