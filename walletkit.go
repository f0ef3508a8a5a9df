// Package walletkit is a client SDK for social-login authentication with an
// embedded smart wallet. It runs a popup-based handshake against a hosted
// auth backend, persists the resulting session with expiry semantics, and
// routes chain operations over a dual-address wallet model (smart account
// over its underlying signer).
package walletkit

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/walletkit/walletkit/adapters/backend"
	"github.com/walletkit/walletkit/adapters/browser"
	"github.com/walletkit/walletkit/adapters/ethereum"
	"github.com/walletkit/walletkit/adapters/events"
	"github.com/walletkit/walletkit/adapters/store"
	"github.com/walletkit/walletkit/adapters/tokenizer"
	"github.com/walletkit/walletkit/ports"
	"github.com/walletkit/walletkit/service"
)

// Dependencies are the collaborators a Client is built from. Any nil field is
// replaced with a default implementation: in-memory stores, the system
// browser, an HTTP backend client, and an in-process event bus.
type Dependencies struct {
	Sessions ports.SessionStore
	States   ports.StateStore
	Browser  ports.Browser
	Tokens   ports.StateTokenizer
	Backend  ports.BackendClient
	Wallet   ports.WalletProvider
	Dialer   ports.ReadClientDialer
	Events   ports.EventPublisher
	Logger   watermill.LoggerAdapter
}

// Client bundles the authentication facade and the wallet router.
type Client struct {
	Auth   *service.SessionManager
	Wallet *service.WalletRouter

	bus *events.GoChannelBus
}

// New builds a Client from the configuration, fills in default dependencies,
// and starts the bootstrap steps (key validation, session restore).
func New(ctx context.Context, cfg Config, deps Dependencies) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	client := &Client{}

	if deps.Sessions == nil || deps.States == nil {
		mem := store.NewMemoryStore()
		if deps.Sessions == nil {
			deps.Sessions = mem
		}
		if deps.States == nil {
			deps.States = mem
		}
	}
	if deps.Browser == nil {
		deps.Browser = browser.NewLoopbackBrowser(logger)
	}
	if deps.Tokens == nil {
		deps.Tokens = tokenizer.NewJWTStateTokenizer(cfg.StateSecret)
	}
	if deps.Backend == nil {
		deps.Backend, err = backend.NewClient(cfg.BackendURL, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to build backend client: %w", err)
		}
	}
	if deps.Dialer == nil {
		deps.Dialer = ethereum.NewDialer(registry)
	}
	if deps.Events == nil {
		client.bus = events.NewGoChannelBus(logger)
		deps.Events = client.bus
	}

	handshake := service.NewHandshake(
		service.HandshakeConfig{
			BackendURL: cfg.BackendURL,
			PopupPoll:  cfg.PopupPoll,
		},
		deps.Sessions,
		deps.States,
		deps.Browser,
		deps.Tokens,
		deps.Backend,
		logger,
	)

	client.Auth = service.NewSessionManager(
		service.ManagerConfig{ClientID: cfg.ClientID, APIKey: cfg.APIKey},
		handshake,
		deps.Sessions,
		deps.States,
		deps.Wallet,
		deps.Backend,
		deps.Events,
		logger,
	)

	client.Wallet = service.NewWalletRouter(
		service.RouterConfig{ReceiptPoll: cfg.ReceiptPoll, ReceiptTimeout: cfg.ReceiptTimeout},
		deps.Wallet,
		registry,
		deps.Dialer,
		deps.Events,
		logger,
	)

	client.Auth.Bootstrap(ctx)
	return client, nil
}

// Bus returns the in-process event bus, or nil when an external publisher was
// injected.
func (c *Client) Bus() *events.GoChannelBus {
	return c.bus
}

// Close tears down resources owned by the client.
func (c *Client) Close() error {
	if c.bus != nil {
		return c.bus.Close()
	}
	return nil
}
