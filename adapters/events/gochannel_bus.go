package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/walletkit/walletkit/ports"
)

// GoChannelBus is an in-process publish/subscribe bus built on watermill's
// gochannel transport. It is created with the SDK client and torn down with
// it, so tests stay isolated from each other.
type GoChannelBus struct {
	pubsub *gochannel.GoChannel
}

var _ ports.EventPublisher = (*GoChannelBus)(nil)

// NewGoChannelBus creates a new in-process bus.
func NewGoChannelBus(logger watermill.LoggerAdapter) *GoChannelBus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &GoChannelBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, logger),
	}
}

// Subscribe returns a channel of messages published to the topic. The
// subscription lives until ctx is cancelled or the bus is closed.
func (b *GoChannelBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down and terminates all subscriptions.
func (b *GoChannelBus) Close() error {
	return b.pubsub.Close()
}

// PublishLogin publishes a login event.
func (b *GoChannelBus) PublishLogin(ctx context.Context, userID string) error {
	return publish(b.pubsub, TopicLogin, LoginEvent{UserID: userID})
}

// PublishLogout publishes a logout event.
func (b *GoChannelBus) PublishLogout(ctx context.Context, userID string) error {
	return publish(b.pubsub, TopicLogout, LogoutEvent{UserID: userID})
}

// PublishWalletLinked publishes a wallet-linked event.
func (b *GoChannelBus) PublishWalletLinked(ctx context.Context, userID string, smartAccount, signer common.Address) error {
	return publish(b.pubsub, TopicWalletLinked, WalletLinkedEvent{
		UserID:       userID,
		SmartAccount: smartAccount,
		Signer:       signer,
	})
}

// PublishTransactionSent publishes a transaction-sent event.
func (b *GoChannelBus) PublishTransactionSent(ctx context.Context, chainID uint64, hash common.Hash) error {
	return publish(b.pubsub, TopicTransaction, TransactionSentEvent{ChainID: chainID, Hash: hash})
}

// PublishChainSwitched publishes a chain-switched event.
func (b *GoChannelBus) PublishChainSwitched(ctx context.Context, fromID, toID uint64) error {
	return publish(b.pubsub, TopicChainSwitched, ChainSwitchedEvent{FromID: fromID, ToID: toID})
}
