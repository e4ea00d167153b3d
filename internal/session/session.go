// Package session owns the access/refresh token pair, attaches credentials to
// outgoing requests and recovers from an expired access token with a single
// shared refresh.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"tasksync/internal/service"
)

// Session is an immutable token pair plus the profile it was issued for.
// A nil *Session is the anonymous session; all accessors are nil-safe.
type Session struct {
	token *oauth2.Token
	user  service.User
}

// New builds a session from server-issued tokens. The expiry is taken from
// the access token's exp claim when it is a JWT.
func New(accessToken, refreshToken string, user service.User) *Session {
	return &Session{
		token: &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			Expiry:       tokenExpiry(accessToken),
		},
		user: user,
	}
}

// AccessToken returns the access token, or "" when anonymous.
func (s *Session) AccessToken() string {
	if s == nil || s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// RefreshToken returns the refresh token, or "" when anonymous.
func (s *Session) RefreshToken() string {
	if s == nil || s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// User returns the profile carried by the session.
func (s *Session) User() service.User {
	if s == nil {
		return service.User{}
	}
	return s.user
}

// Expiry returns the access token expiry; zero when unknown.
func (s *Session) Expiry() time.Time {
	if s == nil || s.token == nil {
		return time.Time{}
	}
	return s.token.Expiry
}

// Expired reports whether the access token's exp claim has passed.
// Tokens without a readable exp claim are never reported expired; the server decides.
func (s *Session) Expired(now time.Time) bool {
	exp := s.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}

// AuthorizationHeader returns the Authorization header value, or "" when
// there is no access token.
func (s *Session) AuthorizationHeader() string {
	if s.AccessToken() == "" {
		return ""
	}
	return s.token.Type() + " " + s.token.AccessToken
}

// rotate returns a new session with a fresh token pair and the same profile.
// An empty refresh token keeps the current one.
func (s *Session) rotate(accessToken, refreshToken string) *Session {
	if refreshToken == "" {
		refreshToken = s.RefreshToken()
	}
	return New(accessToken, refreshToken, s.User())
}

// withUser returns a copy of s carrying user.
func (s *Session) withUser(user service.User) *Session {
	token := *s.token
	return &Session{token: &token, user: user}
}

// tokenExpiry reads the exp claim without verifying the signature; the client
// has no key and only uses it for display and diagnostics.
func tokenExpiry(raw string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
