package ports

import (
	"context"

	"github.com/walletkit/walletkit/core"
)

// KeyValidation is the backend's answer to an API key check.
type KeyValidation struct {
	Valid       bool   `json:"valid"`
	ProjectName string `json:"projectName"`
	Tier        string `json:"tier"`
	Error       string `json:"error"`
}

// CodeExchange is the backend's answer to a redirect-callback code exchange.
type CodeExchange struct {
	Success bool                `json:"success"`
	Token   string              `json:"token"`
	User    core.IdentityUpdate `json:"user"`
	Error   string              `json:"error"`
}

// BackendClient talks to the hosted auth backend.
type BackendClient interface {
	ValidateKey(ctx context.Context, apiKey string) (KeyValidation, error)
	ExchangeCode(ctx context.Context, code, clientID string) (CodeExchange, error)

	// Origin returns the backend's web origin (scheme+host+port), used to
	// filter popup completion messages.
	Origin() string
}
