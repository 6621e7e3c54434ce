package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie identifies a browser session for the login guard.
const SessionCookie = "ts_session"

const (
	sessionKey    = "session_id"
	sessionMaxAge = 30 * 24 * time.Hour
)

// SessionMiddleware makes sure every request carries a session id, issuing
// a fresh cookie when the browser has none or presents a malformed one.
func SessionMiddleware(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(SessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
				MaxAge:   int(sessionMaxAge.Seconds()),
			})
		}
		c.Locals(sessionKey, id)
		return c.Next()
	}
}

// SessionID returns the id assigned by SessionMiddleware.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}
