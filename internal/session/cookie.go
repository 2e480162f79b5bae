package session

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	// DefaultCookieName is the cookie carrying the session.
	DefaultCookieName = "nestegg_session"
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * 24 * time.Hour
)

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultCookieName
	}
	return o.Name
}

func (o CookieOptions) ttl() time.Duration {
	if o.TTL <= 0 {
		return DefaultTTL
	}
	return o.TTL
}

func (o CookieOptions) write(c fiber.Ctx, value string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     o.name(),
		Value:    value,
		Path:     "/",
		Expires:  now.Add(o.ttl()),
		HTTPOnly: true,
		Secure:   o.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
