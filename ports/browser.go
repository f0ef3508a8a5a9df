package ports

import (
	"context"

	"github.com/walletkit/walletkit/core"
)

// Auth message types delivered by the popup completion page.
const (
	MessageAuthSuccess = "AUTH_SUCCESS"
	MessageAuthError   = "AUTH_ERROR"
)

// AuthMessage is a completion message received from the popup context.
// Origin is the message sender's web origin (scheme+host+port) and must be
// checked against the backend origin before the message is trusted.
type AuthMessage struct {
	Type   string              `json:"type"`
	Origin string              `json:"-"`
	State  string              `json:"state"`
	Token  string              `json:"token"`
	User   core.IdentityUpdate `json:"user"`
	Error  string              `json:"error"`
}

// PopupWindow is one opened authentication browsing context.
type PopupWindow interface {
	// Messages delivers completion messages posted by the popup page.
	Messages() <-chan AuthMessage

	// Closed reports whether the user closed the popup. Polled by the
	// handshake coordinator to detect abandonment.
	Closed() bool

	// Close tears the popup down. Safe to call more than once.
	Close() error
}

// Browser opens popup windows. An open failure means the popup was blocked.
type Browser interface {
	Open(ctx context.Context, url string) (PopupWindow, error)
}
