package http

import (
	"net/http"
	"time"
)

type CookieConfig struct {
	Name      string
	AdminName string
	Path      string
	Domain    string
	Secure    bool
	HTTPOnly  bool
	SameSite  http.SameSite
}

func (c CookieConfig) withDefaults() CookieConfig {
	if c.Name == "" {
		c.Name = "session-token"
	}
	if c.AdminName == "" {
		c.AdminName = "admin-session-token"
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}

func (c CookieConfig) set(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  expires,
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// expire overwrites the cookie with an empty value that is already stale.
func (c CookieConfig) expire(w http.ResponseWriter, name string, now time.Time) {
	c.set(w, name, "", now)
}
