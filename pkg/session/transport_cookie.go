package session

import (
	"errors"
	"net/http"

	"github.com/altstack/sessionkit/pkg/cookie"
)

// CookieTransport implements Transport using an HTTP cookie. The cookie
// value is the raw session token; all state lives server-side, so there is
// nothing to sign or encrypt.
type CookieTransport struct {
	cookieMgr *cookie.Manager
	name      string
	path      string
	domain    string
	secure    bool
}

// NewCookieTransport creates a cookie transport from the session
// configuration.
func NewCookieTransport(cookieMgr *cookie.Manager, cfg Config) *CookieTransport {
	return &CookieTransport{
		cookieMgr: cookieMgr,
		name:      cfg.CookieName,
		path:      cfg.CookiePath,
		domain:    cfg.CookieDomain,
		secure:    cfg.SecureCookies,
	}
}

// GetToken extracts the session token from the cookie.
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookieMgr.Get(r, t.name)
	if err != nil {
		if errors.Is(err, cookie.ErrCookieNotFound) {
			return "", ErrNoToken
		}
		return "", err
	}
	return token, nil
}

// SetToken stores the session token in the cookie, overwriting any prior
// value. HttpOnly is always set: the token must never be readable by
// client-side script.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string) error {
	opts := []cookie.Option{
		cookie.WithPath(t.path),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.domain != "" {
		opts = append(opts, cookie.WithDomain(t.domain))
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}

	return t.cookieMgr.Set(w, t.name, token, opts...)
}
