package shared

import (
	"strings"

	"golang.org/x/oauth2"
)

// TokenType is the scheme the catalog API issues.
const TokenType = "Bearer"

// Session is the immutable authentication context handed to API clients.
//
// The zero value is an anonymous session. Logging in or out produces a new
// Session; clients built from the old value are unaffected.
type Session struct {
	token *oauth2.Token
}

// NewSession wraps an access token. Blank tokens yield an anonymous session.
func NewSession(accessToken string) Session {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return Session{}
	}
	return Session{token: &oauth2.Token{AccessToken: accessToken, TokenType: TokenType}}
}

// Anonymous returns a session without credentials.
func Anonymous() Session { return Session{} }

// Authenticated reports whether the session carries an access token.
func (s Session) Authenticated() bool {
	return s.token != nil && s.token.AccessToken != ""
}

// AccessToken returns the raw token, or "" for anonymous sessions.
func (s Session) AccessToken() string {
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// Token returns a copy of the [oauth2.Token] for use with [oauth2.StaticTokenSource].
// It returns nil for anonymous sessions.
func (s Session) Token() *oauth2.Token {
	if !s.Authenticated() {
		return nil
	}
	t := *s.token
	return &t
}
