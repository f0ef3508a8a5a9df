package ports

import (
	"context"

	"github.com/walletkit/walletkit/core"
)

// SessionStore persists the single session record in durable storage.
// A missing or malformed record is reported as absent, never as an error.
type SessionStore interface {
	SaveSession(ctx context.Context, session core.Session) error
	LoadSession(ctx context.Context) (core.Session, bool, error)
	ClearSession(ctx context.Context) error
}

// StateStore holds the correlation state for one in-flight handshake attempt
// in short-lived storage.
type StateStore interface {
	SaveState(ctx context.Context, state core.CorrelationState) error
	LoadState(ctx context.Context) (core.CorrelationState, bool, error)
	ClearState(ctx context.Context) error
}
