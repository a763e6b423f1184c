package session

import "errors"

var (
	// ErrSessionNotFound indicates no document matched the requested token.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionRevoked indicates a write attempted to replace a document
	// whose expired flag is already set. Revocation is permanent per token.
	ErrSessionRevoked = errors.New("session.revoked")

	// ErrTokenGeneration indicates the secure random source failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrNoToken indicates the transport found no token in the request.
	ErrNoToken = errors.New("session.no_token")

	// ErrNoStore indicates no store was configured on the manager.
	ErrNoStore = errors.New("session.no_store")

	// ErrInvalidDocument indicates a store call received a nil or
	// tokenless document.
	ErrInvalidDocument = errors.New("session.invalid_document")
)
