// Package auth issues and verifies the HS256 bearer tokens handed out by
// POST /login, and wraps bcrypt for password checks.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued token: 7 days.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken is wrapped by every Verify failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. "sub" carries the numeric user id and shadows
// the string Subject of the embedded registered claims.
type Claims struct {
	UserID int64 `json:"sub"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies tokens with a shared symmetric secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens signing with secret. A non-positive ttl falls
// back to DefaultTTL.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for userID. exp is exactly iat + ttl at second
// precision.
func (t *Tokens) Issue(userID int64) (string, Claims, error) {
	iat := t.now().UTC().Truncate(time.Second)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(t.ttl)),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, claims, nil
}

// Verify checks the signature (HS256 only) and the exp claim. The returned
// error wraps ErrInvalidToken and the parser's reason.
func (t *Tokens) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the credential from an Authorization header value.
// The "Bearer" prefix is matched case-insensitively; a header without it is
// returned trimmed so that Verify can reject it.
func BearerToken(header string) string {
	h := strings.TrimSpace(header)
	if len(h) >= 6 && strings.EqualFold(h[:6], "bearer") {
		h = h[6:]
	}
	return strings.TrimSpace(h)
}
