package session

import "net/http"

// Transport defines how session tokens travel between client and server.
// The token is an opaque high-entropy key into server-side state; the
// transport never carries session data itself.
type Transport interface {
	// GetToken extracts the session token from the request.
	// Returns ErrNoToken when the request carries none.
	GetToken(r *http.Request) (string, error)

	// SetToken sends the session token in the response, replacing any
	// prior token of the same name.
	SetToken(w http.ResponseWriter, token string) error
}
