// Package cookie provides a small cookie manager with process-wide defaults
// and per-call functional options.
//
// A Manager carries defaults (path, domain, security attributes) set once at
// construction, so call sites only spell out what differs:
//
//	mgr := cookie.New(cookie.WithSecure(true))
//
//	mgr.Set(w, "sid", token, cookie.WithHTTPOnly(true))
//	value, err := mgr.Get(r, "sid")
//	mgr.Delete(w, "sid")
//
// Defaults can also be loaded from the environment via Config and
// NewFromConfig.
package cookie
