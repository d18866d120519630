// Package auth validates the bearer credential presented during the
// connection handshake. Verification is a pure function of (token, secret);
// the relay trusts the claims of any token that passes the signature check.
package auth

import (
	"errors"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Sketch/internal/domain"
)

var (
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingClaims = errors.New("token missing required claims")
)

type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates a token and resolves the identity carried in
// its claims. Only the HMAC family is accepted.
func (v *Verifier) Verify(token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, ErrMissingClaims
	}

	id, _ := claims["sub"].(string)
	if id == "" {
		// the web app issues tokens with the user id under "id"
		id, _ = claims["id"].(string)
	}
	username, _ := claims["username"].(string)

	user, err := domain.NewUser(domain.UserID(id), username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingClaims, err)
	}
	return user, nil
}
