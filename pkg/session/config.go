package session

import "time"

// Config holds the session manager configuration.
type Config struct {
	// CookieName is the name of the session cookie (default: "sid")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// CookiePath limits the cookie to a path prefix
	CookiePath string `env:"SESSION_COOKIE_PATH" envDefault:"/"`

	// CookieDomain limits the cookie to a domain (empty = host-only)
	CookieDomain string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`

	// SecureCookies restricts the cookie to encrypted transport
	// (recommended for production)
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// IdleTimeout is the maximum inactivity before a session is forcibly
	// expired. Recommended no more than 20 minutes.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"10m"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:    "sid",
		CookiePath:    "/",
		CookieDomain:  "",
		SecureCookies: false,
		IdleTimeout:   10 * time.Minute,
	}
}

// NewFromConfig creates a Manager from the provided Config.
// A store is still required via options.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}
