package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

// Receipt polling defaults. The timeout is configurable per router; a zero
// config falls back to these.
const (
	DefaultReceiptPoll    = 2 * time.Second
	DefaultReceiptTimeout = 2 * time.Minute
)

var weiPerEther = decimal.New(1, 18)

// SendRequest is a plain transfer or raw call. Value is denominated in the
// chain's native currency (ether units), not wei.
type SendRequest struct {
	To    common.Address
	Value decimal.Decimal
	Data  []byte
}

// ContractCall is a state-mutating contract invocation. ABI is the contract's
// JSON ABI; Args are the function arguments in declaration order.
type ContractCall struct {
	Address      common.Address
	ABI          string
	FunctionName string
	Args         []any
	Value        decimal.Decimal
}

// RouterConfig configures a wallet router.
type RouterConfig struct {
	ReceiptPoll    time.Duration
	ReceiptTimeout time.Duration
}

// WalletRouter presents a single chain-aware operation surface over the
// wallet provider, regardless of whether a smart account or only the
// underlying signer is present.
type WalletRouter struct {
	provider ports.WalletProvider
	registry *core.ChainRegistry
	dialer   ports.ReadClientDialer
	events   ports.EventPublisher
	logger   watermill.LoggerAdapter

	receiptPoll    time.Duration
	receiptTimeout time.Duration
}

// NewWalletRouter creates a wallet router.
func NewWalletRouter(
	cfg RouterConfig,
	provider ports.WalletProvider,
	registry *core.ChainRegistry,
	dialer ports.ReadClientDialer,
	events ports.EventPublisher,
	logger watermill.LoggerAdapter,
) *WalletRouter {
	if cfg.ReceiptPoll <= 0 {
		cfg.ReceiptPoll = DefaultReceiptPoll
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = DefaultReceiptTimeout
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &WalletRouter{
		provider:       provider,
		registry:       registry,
		dialer:         dialer,
		events:         events,
		logger:         logger,
		receiptPoll:    cfg.ReceiptPoll,
		receiptTimeout: cfg.ReceiptTimeout,
	}
}

// ActiveAddress resolves the primary address: the smart account when one
// exists, otherwise the underlying signer. A signer-only address may be shown
// even though the wallet is not ready for transaction submission.
func (r *WalletRouter) ActiveAddress() (common.Address, bool) {
	if r.provider == nil {
		return common.Address{}, false
	}
	if smart, ok := r.provider.SmartAccount(); ok {
		return smart.Address(), true
	}
	return r.provider.SignerAddress()
}

// Ready reports whether transactions can be submitted: the provider is ready,
// a smart account client is bound, and its address is resolved. Signer-only
// is never ready.
func (r *WalletRouter) Ready() bool {
	if r.provider == nil || !r.provider.Ready() {
		return false
	}
	smart, ok := r.provider.SmartAccount()
	return ok && smart.Address() != (common.Address{})
}

// ActiveChain returns the chain descriptor for the provider's current chain,
// resolved leniently.
func (r *WalletRouter) ActiveChain() core.Chain {
	if r.provider == nil {
		return r.registry.Default()
	}
	return r.registry.Resolve(r.provider.ChainID())
}

// SendTransaction submits a transaction and returns its hash. Value defaults
// to zero and Data to empty.
func (r *WalletRouter) SendTransaction(ctx context.Context, req SendRequest) (common.Hash, error) {
	smart, err := r.smartClient()
	if err != nil {
		return common.Hash{}, err
	}

	hash, err := smart.SendTransaction(ctx, ports.TxRequest{
		To:    req.To,
		Value: toWei(req.Value),
		Data:  req.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("transaction failed: %w", err)
	}

	chainID := r.provider.ChainID()
	r.publish(func() error { return r.events.PublishTransactionSent(ctx, chainID, hash) })
	return hash, nil
}

// WriteContract ABI-encodes the call and submits it through the same path as
// SendTransaction.
func (r *WalletRouter) WriteContract(ctx context.Context, call ContractCall) (common.Hash, error) {
	if _, err := r.smartClient(); err != nil {
		return common.Hash{}, err
	}

	parsed, err := abi.JSON(strings.NewReader(call.ABI))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid contract abi: %w", err)
	}
	data, err := parsed.Pack(call.FunctionName, call.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode %s call: %w", call.FunctionName, err)
	}

	return r.SendTransaction(ctx, SendRequest{
		To:    call.Address,
		Value: call.Value,
		Data:  data,
	})
}

// SignMessage produces a personal signature over the message text.
func (r *WalletRouter) SignMessage(ctx context.Context, text string) ([]byte, error) {
	smart, err := r.smartClient()
	if err != nil {
		return nil, err
	}
	return smart.SignMessage(ctx, []byte(text))
}

// SignTypedData produces an EIP-712 signature over the structured data.
func (r *WalletRouter) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	smart, err := r.smartClient()
	if err != nil {
		return nil, err
	}
	return smart.SignTypedData(ctx, data)
}

// SwitchChain requests a chain switch. Unregistered ids are rejected with
// core.ErrUnsupportedChain. The router does not update any local chain state;
// the new chain is observed on the next read, so callers must not assume the
// switch is visible immediately after the call returns.
func (r *WalletRouter) SwitchChain(ctx context.Context, chainID uint64) error {
	if _, err := r.registry.Lookup(chainID); err != nil {
		return err
	}
	if r.provider == nil {
		return core.ErrWalletNotReady
	}

	from := r.provider.ChainID()
	if err := r.provider.SwitchChain(ctx, chainID); err != nil {
		return fmt.Errorf("chain switch failed: %w", err)
	}

	r.publish(func() error { return r.events.PublishChainSwitched(ctx, from, chainID) })
	return nil
}

// WaitForTransaction polls the active chain's read client until the receipt
// is available, bounded by the configured timeout.
func (r *WalletRouter) WaitForTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	client, err := r.dialer.ReadClient(ctx, r.ActiveChain().ID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(r.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: %s", core.ErrReceiptTimeout, hash)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *WalletRouter) smartClient() (ports.SmartAccountClient, error) {
	if r.provider == nil || !r.provider.Ready() {
		return nil, core.ErrWalletNotReady
	}
	smart, ok := r.provider.SmartAccount()
	if !ok || smart.Address() == (common.Address{}) {
		return nil, core.ErrWalletNotReady
	}
	return smart, nil
}

func (r *WalletRouter) publish(fn func() error) {
	if r.events == nil {
		return
	}
	if err := fn(); err != nil {
		r.logger.Info("event publish failed", watermill.LogFields{"err": err.Error()})
	}
}

func toWei(value decimal.Decimal) *big.Int {
	if value.IsZero() {
		return big.NewInt(0)
	}
	return value.Mul(weiPerEther).BigInt()
}
