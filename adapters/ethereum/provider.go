package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/walletkit/walletkit/ports"
)

const defaultGasLimit = 300_000

// TxBackend is the chain surface needed to submit transactions. Satisfied by
// ethclient.Client.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// LocalProvider is a wallet provider backed by a local EOA key. The smart
// account is counterfactual: its address is derived from the signer and
// bound on CreateWallet, after which operations are signed by the EOA and
// submitted through the transaction backend.
type LocalProvider struct {
	key        *ecdsa.PrivateKey
	signerAddr common.Address
	backend    TxBackend

	mu      sync.RWMutex
	chainID uint64
	smart   *smartAccount
}

var _ ports.WalletProvider = (*LocalProvider)(nil)

// NewLocalProvider creates a provider for the given key, starting on chainID.
func NewLocalProvider(key *ecdsa.PrivateKey, backend TxBackend, chainID uint64) *LocalProvider {
	return &LocalProvider{
		key:        key,
		signerAddr: crypto.PubkeyToAddress(key.PublicKey),
		backend:    backend,
		chainID:    chainID,
	}
}

// Ready reports whether a smart account has been bound.
func (p *LocalProvider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.smart != nil
}

// SignerAddress returns the EOA address.
func (p *LocalProvider) SignerAddress() (common.Address, bool) {
	return p.signerAddr, true
}

// SmartAccount returns the bound smart account client, if any.
func (p *LocalProvider) SmartAccount() (ports.SmartAccountClient, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.smart == nil {
		return nil, false
	}
	return p.smart, true
}

// CreateWallet binds the counterfactual smart account. Calling it again
// returns the existing account.
func (p *LocalProvider) CreateWallet(ctx context.Context) (common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.smart != nil {
		return p.smart.address, nil
	}

	p.smart = &smartAccount{
		provider: p,
		address:  crypto.CreateAddress(p.signerAddr, 0),
	}
	return p.smart.address, nil
}

// SwitchChain moves the provider to another chain.
func (p *LocalProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainID = chainID
	return nil
}

// ChainID returns the provider's current chain.
func (p *LocalProvider) ChainID() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chainID
}

type smartAccount struct {
	provider *LocalProvider
	address  common.Address
}

// Address returns the smart account address.
func (a *smartAccount) Address() common.Address {
	return a.address
}

// SendTransaction signs and submits the transaction, returning its hash.
func (a *smartAccount) SendTransaction(ctx context.Context, req ports.TxRequest) (common.Hash, error) {
	p := a.provider

	nonce, err := p.backend.PendingNonceAt(ctx, p.signerAddr)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := p.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &req.To,
		Value:    value,
		Gas:      defaultGasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	chainID := new(big.Int).SetUint64(p.ChainID())
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit transaction: %w", err)
	}
	return signed.Hash(), nil
}

// SignMessage produces an EIP-191 personal signature over msg.
func (a *smartAccount) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), a.provider.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	// Shift V to the 27/28 convention expected by on-chain verifiers.
	sig[64] += 27
	return sig, nil
}

// SignTypedData produces an EIP-712 signature over the typed data.
func (a *smartAccount) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	sig, err := crypto.Sign(hash, a.provider.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign typed data: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
