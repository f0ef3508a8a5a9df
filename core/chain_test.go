package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainRegistryStrictLookup(t *testing.T) {
	registry, err := NewChainRegistry(ChainPolygon.ID, ChainPolygon, ChainEthereum)
	require.NoError(t, err)

	chain, err := registry.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "Ethereum", chain.Name)

	_, err = registry.Lookup(99999)
	assert.ErrorIs(t, err, ErrUnsupportedChain)
}

func TestChainRegistryLenientResolve(t *testing.T) {
	registry, err := NewChainRegistry(ChainPolygon.ID, ChainPolygon, ChainEthereum)
	require.NoError(t, err)

	// The id rejected by Lookup silently resolves to the default chain.
	chain := registry.Resolve(99999)
	assert.Equal(t, ChainPolygon.ID, chain.ID)

	assert.Equal(t, ChainEthereum.ID, registry.Resolve(1).ID)
	assert.Equal(t, ChainPolygon.ID, registry.Default().ID)
}

func TestChainRegistryRejectsBadDefault(t *testing.T) {
	_, err := NewChainRegistry(42, ChainPolygon)
	assert.Error(t, err)

	_, err = NewChainRegistry(1)
	assert.Error(t, err)
}
