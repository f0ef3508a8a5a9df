package ethereum

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

// Dialer constructs and caches read-only clients per chain. Unknown chain
// ids resolve to the registry's default chain rather than erroring; writes
// go through the strict path in the wallet router instead.
type Dialer struct {
	registry *core.ChainRegistry

	mu      sync.Mutex
	clients map[uint64]*ethclient.Client
}

var _ ports.ReadClientDialer = (*Dialer)(nil)

// NewDialer creates a dialer over the given chain registry.
func NewDialer(registry *core.ChainRegistry) *Dialer {
	return &Dialer{
		registry: registry,
		clients:  make(map[uint64]*ethclient.Client),
	}
}

// ReadClient returns a read client for the chain, dialing it on first use.
func (d *Dialer) ReadClient(ctx context.Context, chainID uint64) (ports.ReceiptReader, error) {
	chain := d.registry.Resolve(chainID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if client, ok := d.clients[chain.ID]; ok {
		return client, nil
	}

	client, err := ethclient.DialContext(ctx, chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain %d: %w", chain.ID, err)
	}
	d.clients[chain.ID] = client
	return client, nil
}

// Close closes all dialed clients.
func (d *Dialer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, client := range d.clients {
		client.Close()
		delete(d.clients, id)
	}
}
