// Package auth implements the administrator session for the blog.
//
// SESSION FLOW:
//  1. The admin posts the login form (or completes GitHub sign-in).
//  2. The server issues a signed JWT whose subject is the user id and stores
//     it in the HttpOnly "quill_session" cookie.
//  3. LoadSession reads and validates that cookie on every request and puts
//     the resulting Session into the request context.
//  4. RequireAdmin redirects to the login page when no Session is present.
//  5. Logout deletes the cookie.
//
// The token carries everything needed to trust it (subject, expiry, issuer,
// signature), so no session table exists.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "quill"

// DefaultSessionTTL is used when NewTokenService is given a zero TTL.
const DefaultSessionTTL = 12 * time.Hour

// ErrTokenExpired is returned by Validate for a well-formed token past its expiry.
var ErrTokenExpired = errors.New("auth: token expired")

// Session is the identity attached to an authenticated request.
type Session struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// TokenService signs and verifies session tokens with an HMAC secret.
//
// TOKEN LAYOUT (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:    {"alg":"HS256","typ":"JWT"}
//	- Payload:   {"iss":"quill","sub":"<user id>","jti":"<xid>","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header + "." + payload, secret)
//
// Validate checks the signature, the algorithm, the issuer and the expiry
// before it trusts the subject, so a token edited in the browser or signed
// with "alg":"none" is rejected. The jti is an xid, which gives every token
// a unique, roughly time-ordered id for the logs.
//
// The same secret signs and verifies. Changing QUILL_SESSION_SECRET signs
// every admin out.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; a zero ttl selects DefaultSessionTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long issued tokens stay valid. The session cookie uses the same MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs a session token for userID valid for the service TTL.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a session token with a custom lifetime.
// Tests use negative durations to mint expired tokens.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		ID:        xid.New().String(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token and returns its Session.
//
// The parser pins HS256 and the issuer, and requires an expiry, so a token
// signed with "none" or minted by another application is rejected.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("auth: token has no valid subject")
	}

	sess := &Session{UserID: userID, TokenID: c.ID}
	if c.ExpiresAt != nil {
		sess.ExpiresAt = c.ExpiresAt.Time
	}
	return sess, nil
}
