// Package auth verifies bearer credentials and produces the request-scoped
// Principal carried through the rest of the server. It is the only place
// where a Principal may be constructed.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verifier turns a bearer credential into a Principal or a classified
// failure. The single-tenant deployment wires a StaticVerifier instead.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// Claims is the expected token payload. The sub claim carries the user id
// as a UUID string; email is optional.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTVerifier validates HS256-signed compact tokens against a process-wide
// symmetric key.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify parses and validates the token, then extracts the principal.
//
// Failure classification, in order:
//   - ErrMissingToken: empty input
//   - ErrExpiredToken: exp not strictly greater than now
//   - ErrInvalidToken: malformed token, wrong algorithm, bad signature
//   - MissingClaimError{"sub"}: no subject
//   - ErrInvalidClaim: subject is not a parseable UUID
func (v *JWTVerifier) Verify(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenRequiredClaimMissing) {
			return Principal{}, &MissingClaimError{Claim: "exp"}
		}
		return Principal{}, ErrInvalidToken
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Principal{}, &MissingClaimError{Claim: "sub"}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidClaim
	}

	return Principal{UserID: userID, Email: claims.Email}, nil
}

// GenerateToken mints a signed token for the given user. Used by tests and
// the mktoken development tool; production tokens come from the identity
// provider.
func GenerateToken(userID uuid.UUID, email string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email: email,
	})

	return token.SignedString(secret)
}
