package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TxRequest is a fully resolved transaction handed to the wallet provider.
// Value is in wei; Data may be nil for plain transfers.
type TxRequest struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// SmartAccountClient is a bound smart account capable of submitting
// transactions and producing signatures. Obtained from the wallet provider
// once a smart account exists for the current user.
type SmartAccountClient interface {
	Address() common.Address
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// WalletProvider is the external wallet capability the SDK delegates to.
// The SDK never mutates provider state directly; it reads addresses and
// issues operation requests.
type WalletProvider interface {
	// Ready reports whether the provider considers the account usable.
	Ready() bool

	// SignerAddress returns the underlying EOA address, if any.
	SignerAddress() (common.Address, bool)

	// SmartAccount returns the bound smart account client, if one exists.
	SmartAccount() (SmartAccountClient, bool)

	// CreateWallet provisions a smart account for the current signer and
	// returns its address.
	CreateWallet(ctx context.Context) (common.Address, error)

	// SwitchChain moves the provider to another chain. The change is
	// observed on the next ChainID read, not synchronously.
	SwitchChain(ctx context.Context, chainID uint64) error

	// ChainID returns the provider's current chain.
	ChainID() uint64
}
