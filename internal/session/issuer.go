// Package session issues and checks the signed tokens that back a signed in
// browser session, and moves them in and out of the session cookie.
package session

import (
	"time"

	"github.com/xxxsen/otpauth/internal/pkg/jwt"
)

const DefaultTTL = 24 * time.Hour

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(accountID string) (string, error) {
	return jwt.GenerateToken(accountID, i.secret, i.now(), i.ttl)
}

// Verify returns the claims of a valid token, or ErrInvalidToken /
// ErrTokenExpired.
func (i *Issuer) Verify(token string) (*jwt.Claims, error) {
	return jwt.ParseToken(token, i.secret, i.now())
}
