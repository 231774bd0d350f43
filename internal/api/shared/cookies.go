package shared

import (
	"net/http"
	"time"
)

// Session cookie names.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

// RefreshCookiePath limits the refresh cookie to the user routes that consume it.
const RefreshCookiePath = "/user"

// CookieOptions controls the attributes shared by the session cookies.
type CookieOptions struct {
	Secure bool
	Domain string
}

// SetAuthCookies writes the access and refresh token cookies.
func SetAuthCookies(
	w http.ResponseWriter,
	opts CookieOptions,
	accessToken string,
	accessTTL time.Duration,
	refreshToken string,
	refreshTTL time.Duration,
) {
	http.SetCookie(w, opts.cookie(AccessTokenCookieName, accessToken, "/", accessTTL))
	http.SetCookie(w, opts.cookie(RefreshTokenCookieName, refreshToken, RefreshCookiePath, refreshTTL))
}

// ClearAuthCookies expires both session cookies.
func ClearAuthCookies(w http.ResponseWriter, opts CookieOptions) {
	access := opts.cookie(AccessTokenCookieName, "", "/", 0)
	access.MaxAge = -1
	access.Expires = time.Unix(0, 0)
	http.SetCookie(w, access)

	refresh := opts.cookie(RefreshTokenCookieName, "", RefreshCookiePath, 0)
	refresh.MaxAge = -1
	refresh.Expires = time.Unix(0, 0)
	http.SetCookie(w, refresh)
}

func (o CookieOptions) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   o.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
