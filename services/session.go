package services

import (
	"net/http"
	"strings"

	"chat-relay/auth"
	"chat-relay/errors"
)

// SessionResolver authenticates connection handshake metadata.
// The token travels in the Authorization header ("Bearer <jwt>") or the
// X-Session-Token header; browser websocket clients that cannot set
// headers pass it as a token query parameter, which the upgrade handler
// copies into the Authorization header before resolving.
type SessionResolver struct {
	key []byte
}

func NewSessionResolver(key []byte) *SessionResolver {
	return &SessionResolver{key: key}
}

// Resolve returns the authenticated identity for the given headers.
// Absence of a valid session is an error, never an empty identity.
func (s *SessionResolver) Resolve(header http.Header) (string, error) {
	token := bearerToken(header)
	if token == "" {
		return "", errors.ErrUnauthenticated
	}
	claims, err := auth.ValidateToken(token, s.key)
	if err != nil || claims.UserID == "" {
		return "", errors.ErrUnauthenticated
	}
	return claims.UserID, nil
}

func bearerToken(header http.Header) string {
	raw := header.Get("Authorization")
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		return after
	}
	return header.Get("X-Session-Token")
}
