package models

import "time"

// AuthUser is the profile returned by a successful login.
// Older service versions call the access token "token".
type AuthUser struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Gender       string `json:"gender"`
	Image        string `json:"image"`
	Token        string `json:"token,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// BearerToken returns whichever access token the service sent
func (a AuthUser) BearerToken() string {
	if a.AccessToken != "" {
		return a.AccessToken
	}
	return a.Token
}

// DisplayName is the name shown in the dashboard greeting
func (a AuthUser) DisplayName() string {
	if a.FirstName != "" {
		return a.FirstName
	}
	return a.Username
}

// Session is a persisted login
type Session struct {
	User      AuthUser
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
