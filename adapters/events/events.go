package events

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Topics for session and wallet lifecycle events.
const (
	TopicLogin         = "walletkit.login"
	TopicLogout        = "walletkit.logout"
	TopicWalletLinked  = "walletkit.wallet_linked"
	TopicTransaction   = "walletkit.tx_sent"
	TopicChainSwitched = "walletkit.chain_switched"
)

// LoginEvent is published after a successful authentication.
type LoginEvent struct {
	UserID string `json:"user_id"`
}

// LogoutEvent is published when a session is terminated.
type LogoutEvent struct {
	UserID string `json:"user_id"`
}

// WalletLinkedEvent is published when wallet addresses are merged into the
// user record.
type WalletLinkedEvent struct {
	UserID       string         `json:"user_id"`
	SmartAccount common.Address `json:"smart_account"`
	Signer       common.Address `json:"signer"`
}

// TransactionSentEvent is published after a transaction is submitted.
type TransactionSentEvent struct {
	ChainID uint64      `json:"chain_id"`
	Hash    common.Hash `json:"hash"`
}

// ChainSwitchedEvent is published after a chain switch is requested.
type ChainSwitchedEvent struct {
	FromID uint64 `json:"from_id"`
	ToID   uint64 `json:"to_id"`
}

func publish(publisher message.Publisher, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
