package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptReader is the read-only chain surface needed to await receipts.
// Satisfied by ethclient.Client.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ReadClientDialer constructs read clients per chain. Implementations resolve
// unknown chain ids leniently, falling back to the default chain.
type ReadClientDialer interface {
	ReadClient(ctx context.Context, chainID uint64) (ReceiptReader, error)
}
