package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"

	"github.com/walletkit/walletkit"
	"github.com/walletkit/walletkit/adapters/ethereum"
	"github.com/walletkit/walletkit/adapters/events"
	"github.com/walletkit/walletkit/adapters/store"
	"github.com/walletkit/walletkit/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := watermill.NewStdLogger(false, false)

	cfg := walletkit.Config{
		ClientID:       os.Getenv("WALLETKIT_CLIENT_ID"),
		APIKey:         os.Getenv("WALLETKIT_API_KEY"),
		BackendURL:     os.Getenv("WALLETKIT_BACKEND_URL"),
		Chains:         []core.Chain{core.ChainPolygon, core.ChainEthereum, core.ChainBase},
		DefaultChainID: core.ChainPolygon.ID,
	}

	deps := walletkit.Dependencies{Logger: logger}

	// With Redis configured, sessions survive restarts and events reach
	// other processes via streams.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		redisStore := store.NewRedisStore(redisClient, "walletkit:")
		deps.Sessions = redisStore
		deps.States = redisStore

		publisher, err := events.NewRedisStreamPublisher(redisClient, logger)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
		deps.Events = publisher
	}

	// Demo wallet: a throwaway key. A real host loads one from secure
	// storage or injects a remote provider.
	key, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate wallet key: %v", err)
	}
	deps.Wallet = ethereum.NewLocalProvider(key, nil, cfg.DefaultChainID)

	client, err := walletkit.New(ctx, cfg, deps)
	if err != nil {
		log.Fatalf("Failed to build client: %v", err)
	}
	defer client.Close()

	user, err := client.Auth.Login(ctx)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	if user == nil {
		log.Println("Login window closed, no session")
		return
	}

	log.Printf("Logged in as %s", user.Username)
	if addr, ok := client.Wallet.ActiveAddress(); ok {
		log.Printf("Wallet address: %s (chain %s)", addr.Hex(), client.Wallet.ActiveChain().Name)
	}
}
