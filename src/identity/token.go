package identity

import (
	"github.com/golang-jwt/jwt/v5"
)

// Verifies a session JWT minted by the identity provider and returns the
// subject (the provider's user id). The provider signs session tokens with
// a shared HS256 secret; expiry and not-before are enforced by the parser.
func VerifySessionToken(secret string, credential string) (string, error) {
	if secret == "" || credential == "" {
		return "", ErrUnauthorized
	}

	token, err := jwt.Parse(
		credential,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrUnauthorized
	}

	return sub, nil
}
