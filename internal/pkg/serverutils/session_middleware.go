package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "vegan_sid"
	sessionLocalKey   = "session_id"
)

// SessionMiddleware gives every visitor an anonymous session id cookie.
// Invalid or missing ids are replaced with a fresh uuid.
func SessionMiddleware(secure bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sid := ctx.Cookies(SessionCookieName)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			ctx.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		ctx.Locals(sessionLocalKey, sid)
		return ctx.Next()
	}
}

// SessionID returns the id set by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(sessionLocalKey).(string)
	return sid
}
