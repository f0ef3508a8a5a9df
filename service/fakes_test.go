package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/walletkit/walletkit/ports"
)

type fakeWindow struct {
	msgs      chan ports.AuthMessage
	userClose atomic.Bool
	closes    atomic.Int32
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{msgs: make(chan ports.AuthMessage, 4)}
}

func (w *fakeWindow) Messages() <-chan ports.AuthMessage { return w.msgs }

func (w *fakeWindow) Closed() bool { return w.userClose.Load() }

func (w *fakeWindow) Close() error {
	w.closes.Add(1)
	return nil
}

type fakeBrowser struct {
	mu      sync.Mutex
	blocked bool
	windows []*fakeWindow
	urls    []string
}

func (b *fakeBrowser) Open(ctx context.Context, url string) (ports.PopupWindow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blocked {
		return nil, errors.New("popup blocked by browser")
	}
	w := newFakeWindow()
	b.windows = append(b.windows, w)
	b.urls = append(b.urls, url)
	return w, nil
}

func (b *fakeBrowser) opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.windows)
}

func (b *fakeBrowser) window(i int) *fakeWindow {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= len(b.windows) {
		return nil
	}
	return b.windows[i]
}

func (b *fakeBrowser) url(i int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= len(b.urls) {
		return ""
	}
	return b.urls[i]
}

type fakeBackend struct {
	origin   string
	validate func(apiKey string) (ports.KeyValidation, error)
	exchange func(code, clientID string) (ports.CodeExchange, error)
}

func (b *fakeBackend) Origin() string {
	if b.origin == "" {
		return "https://backend"
	}
	return b.origin
}

func (b *fakeBackend) ValidateKey(ctx context.Context, apiKey string) (ports.KeyValidation, error) {
	if b.validate == nil {
		return ports.KeyValidation{Valid: true}, nil
	}
	return b.validate(apiKey)
}

func (b *fakeBackend) ExchangeCode(ctx context.Context, code, clientID string) (ports.CodeExchange, error) {
	if b.exchange == nil {
		return ports.CodeExchange{}, errors.New("no exchange configured")
	}
	return b.exchange(code, clientID)
}

type fakeSmartAccount struct {
	addr   common.Address
	hash   common.Hash
	sigOut []byte

	mu     sync.Mutex
	lastTx ports.TxRequest
}

func (a *fakeSmartAccount) Address() common.Address { return a.addr }

func (a *fakeSmartAccount) SendTransaction(ctx context.Context, tx ports.TxRequest) (common.Hash, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastTx = tx
	return a.hash, nil
}

func (a *fakeSmartAccount) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	return a.sigOut, nil
}

func (a *fakeSmartAccount) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	return a.sigOut, nil
}

type fakeProvider struct {
	mu          sync.Mutex
	signer      common.Address
	hasSigner   bool
	smart       *fakeSmartAccount
	chainID     uint64
	notReady    bool
	createCalls atomic.Int32
	createGate  chan struct{}
	switched    []uint64
}

func (p *fakeProvider) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.smart != nil && !p.notReady
}

func (p *fakeProvider) SignerAddress() (common.Address, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signer, p.hasSigner
}

func (p *fakeProvider) SmartAccount() (ports.SmartAccountClient, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.smart == nil {
		return nil, false
	}
	return p.smart, true
}

func (p *fakeProvider) CreateWallet(ctx context.Context) (common.Address, error) {
	p.createCalls.Add(1)
	if p.createGate != nil {
		<-p.createGate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.smart = &fakeSmartAccount{addr: common.HexToAddress("0x2222222222222222222222222222222222222222")}
	return p.smart.addr, nil
}

func (p *fakeProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switched = append(p.switched, chainID)
	p.chainID = chainID
	return nil
}

func (p *fakeProvider) ChainID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID
}

type fakeDialer struct {
	reader      ports.ReceiptReader
	err         error
	lastChainID uint64
}

func (d *fakeDialer) ReadClient(ctx context.Context, chainID uint64) (ports.ReceiptReader, error) {
	d.lastChainID = chainID
	if d.err != nil {
		return nil, d.err
	}
	return d.reader, nil
}

type fakeReceiptReader struct {
	mu           sync.Mutex
	calls        int
	succeedAfter int
	receipt      *types.Receipt
}

func (r *fakeReceiptReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.receipt != nil && r.calls >= r.succeedAfter {
		return r.receipt, nil
	}
	return nil, ethereum.NotFound
}

type fakeEvents struct {
	mu     sync.Mutex
	topics []string
}

func (e *fakeEvents) record(topic string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.topics = append(e.topics, topic)
	return nil
}

func (e *fakeEvents) published() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.topics...)
}

func (e *fakeEvents) PublishLogin(ctx context.Context, userID string) error {
	return e.record("login")
}

func (e *fakeEvents) PublishLogout(ctx context.Context, userID string) error {
	return e.record("logout")
}

func (e *fakeEvents) PublishWalletLinked(ctx context.Context, userID string, smart, signer common.Address) error {
	return e.record("wallet_linked")
}

func (e *fakeEvents) PublishTransactionSent(ctx context.Context, chainID uint64, hash common.Hash) error {
	return e.record("tx_sent")
}

func (e *fakeEvents) PublishChainSwitched(ctx context.Context, fromID, toID uint64) error {
	return e.record("chain_switched")
}
