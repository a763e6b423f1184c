package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const (
	// tokenBytes is the entropy drawn per token. 32 bytes keeps tokens
	// infeasible to guess even across very large session populations.
	tokenBytes = 32

	// TokenLength is the exact length of an encoded token.
	TokenLength = 43 // base64url of 32 bytes, unpadded
)

// NewToken returns a fresh opaque session token. Tokens are unpadded
// base64url, so they are safe to place in cookies and URLs as-is.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidToken reports whether candidate has the shape of a token produced by
// NewToken. It is a lexical check only; callers still have to look the token
// up. Its purpose is to reject garbage before it reaches the store.
func ValidToken(candidate string) bool {
	if len(candidate) != TokenLength {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if !isTokenChar(candidate[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
