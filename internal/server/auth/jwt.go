// Package auth issues and verifies the bearer tokens handed out on login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = time.Hour

// Claims carries the standard registered claims; the subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens and verifies them against the same secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, for tests that need to move time forward.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

func NewIssuer(secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty token secret")
	}
	i := &Issuer{secret: secret, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// Issue returns a signed token for subjectID that expires TTL from now.
func (i *Issuer) Issue(subjectID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify returns the subject of a valid token. It fails with
// common.ErrTokenExpired once the expiry is reached and with
// common.ErrTokenInvalid for anything else.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrTokenInvalid
	}

	return claims.Subject, nil
}
