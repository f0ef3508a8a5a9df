package ethereum

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletkit/walletkit/ports"
)

type mockBackend struct {
	sent *types.Transaction
}

func (m *mockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (m *mockBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (m *mockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	m.sent = tx
	return nil
}

func newTestProvider(t *testing.T) (*LocalProvider, *mockBackend) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	backend := &mockBackend{}
	return NewLocalProvider(key, backend, 137), backend
}

func TestCreateWalletIsDeterministicAndIdempotent(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	assert.False(t, p.Ready())
	_, ok := p.SmartAccount()
	assert.False(t, ok)

	first, err := p.CreateWallet(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, first)

	second, err := p.CreateWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	signer, _ := p.SignerAddress()
	assert.Equal(t, crypto.CreateAddress(signer, 0), first)
	assert.True(t, p.Ready())
}

func TestSendTransactionSignsForCurrentChain(t *testing.T) {
	ctx := context.Background()
	p, backend := newTestProvider(t)

	_, err := p.CreateWallet(ctx)
	require.NoError(t, err)
	smart, ok := p.SmartAccount()
	require.True(t, ok)

	to := common.HexToAddress("0x4444444444444444444444444444444444444444")
	hash, err := smart.SendTransaction(ctx, ports.TxRequest{To: to, Value: big.NewInt(42)})
	require.NoError(t, err)

	require.NotNil(t, backend.sent)
	assert.Equal(t, hash, backend.sent.Hash())
	assert.Equal(t, to, *backend.sent.To())
	assert.Equal(t, big.NewInt(42), backend.sent.Value())
	assert.Equal(t, uint64(7), backend.sent.Nonce())
	assert.Equal(t, big.NewInt(137), backend.sent.ChainId())

	// The submitted transaction recovers to the signer.
	signer, _ := p.SignerAddress()
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(137)), backend.sent)
	require.NoError(t, err)
	assert.Equal(t, signer, from)
}

func TestSendTransactionDefaultsNilValue(t *testing.T) {
	ctx := context.Background()
	p, backend := newTestProvider(t)

	_, err := p.CreateWallet(ctx)
	require.NoError(t, err)
	smart, _ := p.SmartAccount()

	_, err = smart.SendTransaction(ctx, ports.TxRequest{To: common.HexToAddress("0xbeef")})
	require.NoError(t, err)
	assert.Zero(t, backend.sent.Value().Sign())
}

func TestSignMessageRecoversSigner(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, err := p.CreateWallet(ctx)
	require.NoError(t, err)
	smart, _ := p.SmartAccount()

	msg := []byte("hello walletkit")
	sig, err := smart.SignMessage(ctx, msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.GreaterOrEqual(t, sig[64], byte(27))

	recovery := make([]byte, 65)
	copy(recovery, sig)
	recovery[64] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(msg), recovery)
	require.NoError(t, err)

	signer, _ := p.SignerAddress()
	assert.Equal(t, signer, crypto.PubkeyToAddress(*pub))
}

func TestSwitchChainObservedOnNextRead(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	require.Equal(t, uint64(137), p.ChainID())
	require.NoError(t, p.SwitchChain(ctx, 1))
	assert.Equal(t, uint64(1), p.ChainID())
}
