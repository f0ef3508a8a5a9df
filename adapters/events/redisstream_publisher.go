package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"github.com/walletkit/walletkit/ports"
)

// RedisStreamPublisher publishes lifecycle events to Redis streams so other
// processes can observe them. Topics and payloads match GoChannelBus.
type RedisStreamPublisher struct {
	publisher *redisstream.Publisher
}

var _ ports.EventPublisher = (*RedisStreamPublisher)(nil)

// NewRedisStreamPublisher creates a publisher on top of an existing Redis
// client.
func NewRedisStreamPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (*RedisStreamPublisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: client},
		logger,
	)
	if err != nil {
		return nil, err
	}
	return &RedisStreamPublisher{publisher: publisher}, nil
}

// Close closes the underlying publisher.
func (p *RedisStreamPublisher) Close() error {
	return p.publisher.Close()
}

// PublishLogin publishes a login event.
func (p *RedisStreamPublisher) PublishLogin(ctx context.Context, userID string) error {
	return publish(p.publisher, TopicLogin, LoginEvent{UserID: userID})
}

// PublishLogout publishes a logout event.
func (p *RedisStreamPublisher) PublishLogout(ctx context.Context, userID string) error {
	return publish(p.publisher, TopicLogout, LogoutEvent{UserID: userID})
}

// PublishWalletLinked publishes a wallet-linked event.
func (p *RedisStreamPublisher) PublishWalletLinked(ctx context.Context, userID string, smartAccount, signer common.Address) error {
	return publish(p.publisher, TopicWalletLinked, WalletLinkedEvent{
		UserID:       userID,
		SmartAccount: smartAccount,
		Signer:       signer,
	})
}

// PublishTransactionSent publishes a transaction-sent event.
func (p *RedisStreamPublisher) PublishTransactionSent(ctx context.Context, chainID uint64, hash common.Hash) error {
	return publish(p.publisher, TopicTransaction, TransactionSentEvent{ChainID: chainID, Hash: hash})
}

// PublishChainSwitched publishes a chain-switched event.
func (p *RedisStreamPublisher) PublishChainSwitched(ctx context.Context, fromID, toID uint64) error {
	return publish(p.publisher, TopicChainSwitched, ChainSwitchedEvent{FromID: fromID, ToID: toID})
}
