package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims defines the structure of the data stored inside the JWT.
// Tokens are minted by the external identity provider; this server only
// validates them.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a specific user. Used by tests
// and the local token tool; production tokens come from the identity
// provider with the same shape.
func GenerateToken(userID string, key []byte, duration time.Duration) (string, error) {
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-relay",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken parses and validates the signature and expiration of a JWT
// string, returning its claims.
func ValidateToken(tokenString string, key []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
