package core

import "time"

const (
	// GraceWindow is subtracted from a session's expiry before it is
	// considered valid, so a token is never handed out right before it
	// expires mid-use.
	GraceWindow = 5 * time.Minute

	// SessionTTL is the fixed lifetime of a session written after a
	// successful handshake. It is not derived from any token claim.
	SessionTTL = time.Hour
)

// Session is an authenticated user session as persisted in the session store.
type Session struct {
	AccessToken string    `json:"accessToken"`
	User        User      `json:"user"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session may still be used at the given time.
// A session is valid only while more than GraceWindow remains before expiry.
func (s Session) ValidAt(now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.Sub(now) > GraceWindow
}

// CorrelationState binds one in-flight handshake attempt to its eventual
// completion. It lives in short-lived storage for the duration of a single
// attempt and is cleared on completion or abandonment.
type CorrelationState struct {
	State    string `json:"state"`
	ClientID string `json:"clientId"`
}
