package walletkit

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/walletkit/walletkit/core"
)

// DefaultBackendURL is the hosted production backend.
const DefaultBackendURL = "https://api.walletkit.dev"

// Appearance controls popup branding.
type Appearance struct {
	Theme string `json:"theme"`
	Logo  string `json:"logo"`
}

// Config is the SDK configuration surface.
type Config struct {
	ClientID string `validate:"required"`
	APIKey   string

	BackendURL string `validate:"url"`

	// Chains defaults to Polygon only; DefaultChainID must be one of them.
	Chains         []core.Chain
	DefaultChainID uint64

	// PopupPoll is the popup liveness check interval.
	PopupPoll time.Duration

	// ReceiptPoll and ReceiptTimeout bound WaitForTransaction.
	ReceiptPoll    time.Duration
	ReceiptTimeout time.Duration

	// StateSecret signs correlation tokens. Empty means a random
	// per-process secret.
	StateSecret []byte

	Gasless    bool
	Appearance Appearance
}

var validate = validator.New()

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if len(c.Chains) == 0 {
		c.Chains = []core.Chain{core.ChainPolygon}
	}
	if c.DefaultChainID == 0 {
		c.DefaultChainID = c.Chains[0].ID
	}
}

// Validate applies defaults and checks the configuration.
func (c *Config) Validate() error {
	c.applyDefaults()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Registry builds the chain registry described by the configuration.
func (c *Config) Registry() (*core.ChainRegistry, error) {
	return core.NewChainRegistry(c.DefaultChainID, c.Chains...)
}
