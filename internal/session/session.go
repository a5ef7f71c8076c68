package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the explicit authentication context attached to
// reservation-path operations. It is acquired at login and invalidated at
// logout or token expiry; nothing in the process holds a token globally.
type Session struct {
	Token       string    `json:"token"`
	Username    string    `json:"username"`
	PassengerID string    `json:"passengerId,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// New builds a session from a freshly issued token. Expiry and the
// passenger identifier are read from the token's claims when present; the
// signature is the backend's concern, so the claims are not verified here.
func New(token, username string) Session {
	s := Session{Token: token, Username: username}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		s.PassengerID = sub
	}
	return s
}

// Valid reports whether the session can still authenticate requests at the
// given instant. A session without a parseable expiry is trusted until the
// backend rejects it.
func (s Session) Valid(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// TTL returns how long the session remains valid, or zero when the token
// carries no expiry.
func (s Session) TTL(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	ttl := s.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
