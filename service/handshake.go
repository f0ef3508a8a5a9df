package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"golang.org/x/oauth2"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

// DefaultPopupPoll is how often the coordinator checks whether the popup was
// closed without producing a completion message.
const DefaultPopupPoll = 500 * time.Millisecond

// HandshakeConfig configures one coordinator.
type HandshakeConfig struct {
	BackendURL string
	PopupPoll  time.Duration
	SessionTTL time.Duration
}

// Handshake executes one authentication attempt end-to-end: it issues the
// correlation state, opens the popup, and waits for either a completion
// message or the popup to be closed. The first completion wins; both
// suspension points are torn down when it lands.
type Handshake struct {
	sessions ports.SessionStore
	states   ports.StateStore
	browser  ports.Browser
	tokens   ports.StateTokenizer
	backend  ports.BackendClient

	backendURL string
	origin     string
	popupPoll  time.Duration
	sessionTTL time.Duration
	now        func() time.Time
	logger     watermill.LoggerAdapter
}

// NewHandshake creates a handshake coordinator.
func NewHandshake(
	cfg HandshakeConfig,
	sessions ports.SessionStore,
	states ports.StateStore,
	browser ports.Browser,
	tokens ports.StateTokenizer,
	backend ports.BackendClient,
	logger watermill.LoggerAdapter,
) *Handshake {
	if cfg.PopupPoll <= 0 {
		cfg.PopupPoll = DefaultPopupPoll
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = core.SessionTTL
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Handshake{
		sessions:   sessions,
		states:     states,
		browser:    browser,
		tokens:     tokens,
		backend:    backend,
		backendURL: cfg.BackendURL,
		origin:     backend.Origin(),
		popupPoll:  cfg.PopupPoll,
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
		logger:     logger,
	}
}

// Authenticate runs one popup handshake attempt and returns the completed
// session. It blocks until a completion message arrives, the popup is closed
// (core.ErrLoginAbandoned), or ctx is cancelled. A blocked popup is reported
// synchronously as core.ErrPopupBlocked. Concurrent calls run independent
// attempts with independent popups; nothing collapses them.
func (h *Handshake) Authenticate(ctx context.Context, clientID string) (*core.Session, error) {
	if clientID == "" {
		return nil, core.ErrMissingClientID
	}

	state, err := h.tokens.Issue(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue state token: %w", err)
	}
	if err := h.states.SaveState(ctx, core.CorrelationState{State: state, ClientID: clientID}); err != nil {
		return nil, err
	}

	win, err := h.browser.Open(ctx, h.authorizeURL(clientID, state))
	if err != nil {
		h.states.ClearState(ctx)
		return nil, fmt.Errorf("%w: %v", core.ErrPopupBlocked, err)
	}
	defer win.Close()

	ticker := time.NewTicker(h.popupPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.states.ClearState(ctx)
			return nil, ctx.Err()

		case msg := <-win.Messages():
			if !h.accept(msg, clientID, state) {
				// Wrong origin, wrong state, or malformed payload:
				// not a completion, not an error.
				continue
			}
			h.states.ClearState(ctx)
			if msg.Type == ports.MessageAuthError {
				return nil, fmt.Errorf("%w: %s", core.ErrAuthRejected, msg.Error)
			}
			return h.writeSession(ctx, msg.Token, msg.User)

		case <-ticker.C:
			if win.Closed() {
				h.states.ClearState(ctx)
				h.logger.Debug("authentication popup closed by user", nil)
				return nil, core.ErrLoginAbandoned
			}
		}
	}
}

// HandleRedirectCallback is the non-popup completion path: it posts the
// authorization code to the backend and writes the session on success. This
// path exchanges no correlation state.
func (h *Handshake) HandleRedirectCallback(ctx context.Context, code, clientID string) (*core.Session, error) {
	if clientID == "" {
		return nil, core.ErrMissingClientID
	}

	res, err := h.backend.ExchangeCode(ctx, code, clientID)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", core.ErrAuthRejected, res.Error)
	}
	return h.writeSession(ctx, res.Token, res.User)
}

func (h *Handshake) authorizeURL(clientID, state string) string {
	cfg := oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{AuthURL: h.backendURL + "/authorize"},
	}
	return cfg.AuthCodeURL(state)
}

// accept decides whether a message completes this attempt. The origin must
// equal the backend origin exactly, and the echoed state token must verify
// against the one issued for this attempt.
func (h *Handshake) accept(msg ports.AuthMessage, clientID, state string) bool {
	if msg.Origin != h.origin {
		h.logger.Debug("ignoring message from unexpected origin", watermill.LogFields{"origin": msg.Origin})
		return false
	}
	if msg.Type != ports.MessageAuthSuccess && msg.Type != ports.MessageAuthError {
		return false
	}
	if msg.State != state || h.tokens.Verify(msg.State, clientID) != nil {
		h.logger.Info("ignoring message with mismatched state token", nil)
		return false
	}
	return true
}

func (h *Handshake) writeSession(ctx context.Context, token string, identity core.IdentityUpdate) (*core.Session, error) {
	session := core.Session{
		AccessToken: token,
		User:        core.User{}.ApplyIdentity(identity),
		ExpiresAt:   h.now().Add(h.sessionTTL),
	}
	if err := h.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &session, nil
}
