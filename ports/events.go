package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// EventPublisher fans out session and wallet lifecycle notifications.
// Publishing is best-effort: callers log failures and never fail the
// triggering operation.
type EventPublisher interface {
	PublishLogin(ctx context.Context, userID string) error
	PublishLogout(ctx context.Context, userID string) error
	PublishWalletLinked(ctx context.Context, userID string, smartAccount, signer common.Address) error
	PublishTransactionSent(ctx context.Context, chainID uint64, hash common.Hash) error
	PublishChainSwitched(ctx context.Context, fromID, toID uint64) error
}
