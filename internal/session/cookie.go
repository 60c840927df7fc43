package session

import (
	"net/http"
	"time"
)

const CookieName = "__session"

const maxAge = 14 * 24 * time.Hour

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path   string
	Secure bool // set in production
	Domain string
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

func buildCookie(value string, opts CookieOptions) string {
	opts = opts.normalize()

	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	return c.String()
}

func clearCookie(opts CookieOptions) string {
	opts = opts.normalize()

	c := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	return c.String()
}

// cookieValue extracts the session cookie value from a raw Cookie header.
func cookieValue(cookieHeader string) string {
	if cookieHeader == "" {
		return ""
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}
