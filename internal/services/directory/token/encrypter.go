// Package token issues and verifies self-contained bearer credentials bound
// to a user identity. Tokens are HS256-signed JWTs with a fixed expiry;
// verification needs only the server-held signing secret, no lookup.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the default token lifetime, fixed at issuance.
const DefaultTTL = 24 * time.Hour

// ErrMissingSecret indicates the signing secret is not configured. This is a
// fatal configuration error, not a domain error.
var ErrMissingSecret = errors.New("token signing secret is required")

// Encrypter signs and verifies bearer tokens.
type Encrypter struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

// NewEncrypter creates an Encrypter with the given signing secret. A
// non-positive ttl falls back to DefaultTTL.
func NewEncrypter(secret string, ttl time.Duration) (Encrypter, error) {
	if strings.TrimSpace(secret) == "" {
		return Encrypter{}, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Encrypter{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  time.Now,
	}, nil
}

// TTL reports the token lifetime the encrypter signs with.
func (e Encrypter) TTL() time.Duration {
	if e.ttl <= 0 {
		return DefaultTTL
	}
	return e.ttl
}

// Encrypt signs the claims into a token string. The expiry and issued-at
// claims are set from the encrypter clock; expiry is not renewable in place.
func (e Encrypter) Encrypt(claims map[string]any) (string, error) {
	if len(e.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	if e.clock != nil {
		now = e.clock()
	}
	mapped := jwt.MapClaims{}
	for name, value := range claims {
		mapped[name] = value
	}
	// Reserved claims are set last so callers cannot override the
	// configured lifetime.
	mapped["iat"] = now.Unix()
	mapped["exp"] = now.Add(e.ttl).Unix()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapped).SignedString(e.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Subject verifies a token string and returns its subject claim.
func (e Encrypter) Subject(tokenString string) (string, error) {
	if len(e.secret) == 0 {
		return "", ErrMissingSecret
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return e.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time {
			if e.clock != nil {
				return e.clock()
			}
			return time.Now()
		}),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("token has no subject claim")
	}
	return subject, nil
}
