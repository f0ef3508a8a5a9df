package core

import "fmt"

// Chain describes a supported network.
type Chain struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	RPCURL   string `json:"rpcUrl"`
	Currency string `json:"currency"`
}

// Well-known chains offered by default.
var (
	ChainEthereum = Chain{ID: 1, Name: "Ethereum", RPCURL: "https://eth.llamarpc.com", Currency: "ETH"}
	ChainPolygon  = Chain{ID: 137, Name: "Polygon", RPCURL: "https://polygon-rpc.com", Currency: "POL"}
	ChainBase     = Chain{ID: 8453, Name: "Base", RPCURL: "https://mainnet.base.org", Currency: "ETH"}
)

// ChainRegistry is a static table of supported chains with a fixed default.
//
// It deliberately offers two resolution modes: Lookup rejects unknown ids
// (used for chain switching), while Resolve falls back to the default chain
// (used when constructing read clients). The asymmetry is a named policy:
// strict for writes, lenient for reads.
type ChainRegistry struct {
	chains    map[uint64]Chain
	defaultID uint64
}

// NewChainRegistry builds a registry from the given chains. The default must
// be one of them.
func NewChainRegistry(defaultID uint64, chains ...Chain) (*ChainRegistry, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("chain registry requires at least one chain")
	}
	m := make(map[uint64]Chain, len(chains))
	for _, c := range chains {
		m[c.ID] = c
	}
	if _, ok := m[defaultID]; !ok {
		return nil, fmt.Errorf("default chain %d is not among the configured chains", defaultID)
	}
	return &ChainRegistry{chains: m, defaultID: defaultID}, nil
}

// Lookup returns the chain for the given id, or ErrUnsupportedChain.
func (r *ChainRegistry) Lookup(id uint64) (Chain, error) {
	c, ok := r.chains[id]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %d", ErrUnsupportedChain, id)
	}
	return c, nil
}

// Resolve returns the chain for the given id, falling back to the default
// chain when the id is unknown.
func (r *ChainRegistry) Resolve(id uint64) Chain {
	if c, ok := r.chains[id]; ok {
		return c
	}
	return r.chains[r.defaultID]
}

// Default returns the registry's default chain.
func (r *ChainRegistry) Default() Chain {
	return r.chains[r.defaultID]
}

// IDs returns the ids of all registered chains.
func (r *ChainRegistry) IDs() []uint64 {
	ids := make([]uint64, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	return ids
}
