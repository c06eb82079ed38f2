// Package auth verifies the bearer tokens that guard the credential
// issue endpoints.  Token issuance itself belongs to the external session
// layer; this package only validates what that layer signed.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// Claims carries the authenticated principal.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID string `json:"principal_id"`
}

// GenerateToken signs a token for the principal.  Used by tests and dev
// tooling; production tokens come from the session service.
func GenerateToken(principalID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		PrincipalID: principalID,
	})
	return token.SignedString(secretKey)
}

// VerifyToken parses and validates a bearer token, returning the
// principal it was issued to.
func VerifyToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.PrincipalID == "" {
		return "", ErrInvalidToken
	}
	return claims.PrincipalID, nil
}
