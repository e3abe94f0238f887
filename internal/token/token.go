// Package token signs and verifies the bearer tokens issued at login.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("token: invalid or expired token")

// Claims wraps jwt.RegisteredClaims with Email for convenience.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SubjectID parses the subject claim back into a user id.
func (c *Claims) SubjectID() int64 {
	v, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Issuer signs and verifies HS256 tokens with a shared secret. Stateless.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token carrying the user id as subject plus the email claim.
func (i *Issuer) Sign(userID int64, email string) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("token: secret not configured")
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Verify checks signature, structure and expiry. No clock-skew leeway.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, errors.New("token: secret not configured")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
