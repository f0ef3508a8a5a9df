package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ethereum/go-ethereum/common"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

// ManagerConfig configures a session manager.
type ManagerConfig struct {
	ClientID string
	APIKey   string
}

// SessionManager is the externally visible authentication facade. It owns the
// unified user record, restores sessions on startup, and reconciles the
// authenticated identity with the wallet provider's account state.
type SessionManager struct {
	handshake *Handshake
	sessions  ports.SessionStore
	states    ports.StateStore
	wallet    ports.WalletProvider
	backend   ports.BackendClient
	events    ports.EventPublisher
	logger    watermill.LoggerAdapter
	now       func() time.Time

	clientID string
	apiKey   string

	mu             sync.RWMutex
	user           *core.User
	lastToken      string
	loading        bool
	validationDone bool
	validated      bool
	projectName    string
	tier           string

	// creating guards wallet provisioning: at most one in-flight creation
	// request per user.
	creating atomic.Bool
}

// NewSessionManager creates a session manager. Call Bootstrap to run the
// startup steps.
func NewSessionManager(
	cfg ManagerConfig,
	handshake *Handshake,
	sessions ports.SessionStore,
	states ports.StateStore,
	wallet ports.WalletProvider,
	backend ports.BackendClient,
	events ports.EventPublisher,
	logger watermill.LoggerAdapter,
) *SessionManager {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &SessionManager{
		handshake: handshake,
		sessions:  sessions,
		states:    states,
		wallet:    wallet,
		backend:   backend,
		events:    events,
		logger:    logger,
		now:       time.Now,
		clientID:  cfg.ClientID,
		apiKey:    cfg.APIKey,
	}
}

// Bootstrap runs the two independent startup steps concurrently: API key
// validation and session restore.
func (m *SessionManager) Bootstrap(ctx context.Context) {
	go m.ValidateKey(ctx)
	go m.RestoreSession(ctx)
}

// ValidateKey checks the configured API key against the backend. A network
// failure is downgraded to a warning and treated as a pass, so an unreachable
// backend never locks users out of login.
func (m *SessionManager) ValidateKey(ctx context.Context) {
	res, err := m.backend.ValidateKey(ctx, m.apiKey)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationDone = true

	if err != nil {
		m.logger.Info("api key validation unreachable, continuing unvalidated", watermill.LogFields{"err": err.Error()})
		m.validated = true
		return
	}

	m.validated = res.Valid
	m.projectName = res.ProjectName
	m.tier = res.Tier
	if !res.Valid {
		m.logger.Error("api key rejected by backend", core.ErrInvalidAPIKey, watermill.LogFields{"error": res.Error})
	}
}

// RestoreSession loads a persisted session. An expired or malformed record is
// cleared and yields no user; a fresh one populates the user record and kicks
// wallet reconciliation.
func (m *SessionManager) RestoreSession(ctx context.Context) {
	session, ok, err := m.sessions.LoadSession(ctx)
	if err != nil {
		m.logger.Error("failed to read persisted session", err, nil)
		return
	}
	if !ok {
		return
	}
	if !session.ValidAt(m.now()) {
		if err := m.sessions.ClearSession(ctx); err != nil {
			m.logger.Error("failed to clear expired session", err, nil)
		}
		return
	}

	m.mu.Lock()
	user := session.User
	m.user = &user
	m.lastToken = session.AccessToken
	m.mu.Unlock()

	m.reconcileWallet(ctx)
}

// Login runs the popup handshake. An abandoned popup clears the loading flag
// and returns no user and no error. A failed key validation short-circuits
// before any popup is opened.
func (m *SessionManager) Login(ctx context.Context) (*core.User, error) {
	m.mu.Lock()
	if m.validationDone && !m.validated {
		m.mu.Unlock()
		m.logger.Error("login blocked by failed key validation", core.ErrInvalidAPIKey, nil)
		return nil, core.ErrInvalidAPIKey
	}
	m.loading = true
	m.mu.Unlock()

	session, err := m.handshake.Authenticate(ctx, m.clientID)

	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()

	if errors.Is(err, core.ErrLoginAbandoned) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return m.adoptSession(ctx, session), nil
}

// LoginWithCode completes authentication via the redirect-callback path.
func (m *SessionManager) LoginWithCode(ctx context.Context, code string) (*core.User, error) {
	session, err := m.handshake.HandleRedirectCallback(ctx, code, m.clientID)
	if err != nil {
		return nil, err
	}
	return m.adoptSession(ctx, session), nil
}

func (m *SessionManager) adoptSession(ctx context.Context, session *core.Session) *core.User {
	m.mu.Lock()
	user := session.User
	m.user = &user
	m.lastToken = session.AccessToken
	m.mu.Unlock()

	m.publish(func() error { return m.events.PublishLogin(ctx, user.ID) })
	m.reconcileWallet(ctx)
	return m.User()
}

// Logout clears the session and correlation state and resets the in-memory
// user. It is idempotent.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	var userID string
	if m.user != nil {
		userID = m.user.ID
	}
	m.user = nil
	m.lastToken = ""
	m.mu.Unlock()

	var firstErr error
	if err := m.sessions.ClearSession(ctx); err != nil {
		firstErr = err
	}
	if err := m.states.ClearState(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if userID != "" {
		m.publish(func() error { return m.events.PublishLogout(ctx, userID) })
	}
	return firstErr
}

// AccessToken re-reads the session store and returns the token while it is
// within the validity window. Otherwise it falls back to the last in-memory
// token, which may itself be stale: the result is best-effort, not a
// freshness guarantee. Returns "" when no token is known at all.
func (m *SessionManager) AccessToken(ctx context.Context) string {
	session, ok, err := m.sessions.LoadSession(ctx)
	if err == nil && ok && session.ValidAt(m.now()) {
		m.mu.Lock()
		m.lastToken = session.AccessToken
		m.mu.Unlock()
		return session.AccessToken
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastToken
}

// User returns a copy of the current user record, or nil when logged out.
func (m *SessionManager) User() *core.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Loading reports whether a login attempt is in flight.
func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Validation returns the key validation outcome and whether it has completed.
func (m *SessionManager) Validation() (validated, done bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validated, m.validationDone
}

// Project returns the validated project's name and tier.
func (m *SessionManager) Project() (name, tier string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.projectName, m.tier
}

// reconcileWallet merges the wallet provider's account into the user record.
// When the provider has a signer but no smart account yet, it requests wallet
// creation, guarded so a second reconcile pass cannot issue a redundant
// creation request while the first is outstanding.
func (m *SessionManager) reconcileWallet(ctx context.Context) {
	if m.wallet == nil || m.User() == nil {
		return
	}

	signer, ok := m.wallet.SignerAddress()
	if !ok {
		return
	}

	smart, haveSmart := m.wallet.SmartAccount()
	if !haveSmart {
		if !m.creating.CompareAndSwap(false, true) {
			return
		}
		defer m.creating.Store(false)

		if _, err := m.wallet.CreateWallet(ctx); err != nil {
			m.logger.Error("wallet creation failed", err, nil)
			return
		}
		smart, haveSmart = m.wallet.SmartAccount()
		if !haveSmart {
			return
		}
	}

	var smartAddr common.Address
	if smart != nil {
		smartAddr = smart.Address()
	}

	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return
	}
	merged := m.user.ApplyWallet(core.WalletUpdate{
		SignerAddress:       signer,
		SmartAccountAddress: smartAddr,
		ChainID:             m.wallet.ChainID(),
	})
	m.user = &merged
	token := m.lastToken
	m.mu.Unlock()

	// Keep the persisted record in step with the merged user.
	if session, ok, err := m.sessions.LoadSession(ctx); err == nil && ok && session.AccessToken == token {
		session.User = merged
		if err := m.sessions.SaveSession(ctx, session); err != nil {
			m.logger.Error("failed to persist merged user", err, nil)
		}
	}

	m.publish(func() error { return m.events.PublishWalletLinked(ctx, merged.ID, smartAddr, signer) })
}

func (m *SessionManager) publish(fn func() error) {
	if m.events == nil {
		return
	}
	if err := fn(); err != nil {
		m.logger.Info("event publish failed", watermill.LogFields{"err": err.Error()})
	}
}
