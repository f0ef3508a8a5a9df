package tokenizer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

const (
	// AudienceState marks a token as a handshake correlation token.
	AudienceState = "walletkit:state"

	// DefaultStateExpiry bounds how long a handshake attempt may stay
	// in flight before its correlation token goes stale.
	DefaultStateExpiry = 5 * time.Minute
)

// StateClaims are the claims carried by a correlation token.
type StateClaims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce"`
}

// JWTStateTokenizer issues HMAC-signed JWT correlation tokens. The completion
// message must carry the token back, and Verify binds it to the client id it
// was issued for. This closes the forgery window a bare random state value
// would leave open if it were stored but never rechecked.
type JWTStateTokenizer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

var _ ports.StateTokenizer = (*JWTStateTokenizer)(nil)

// NewJWTStateTokenizer creates a tokenizer with the given HMAC secret. When
// the secret is empty a random per-process secret is generated, which is
// sufficient because correlation tokens never outlive the process.
func NewJWTStateTokenizer(secret []byte) *JWTStateTokenizer {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		rand.Read(secret)
	}
	return &JWTStateTokenizer{
		secret: secret,
		expiry: DefaultStateExpiry,
		now:    time.Now,
	}
}

// Issue creates a correlation token bound to the given client id.
func (t *JWTStateTokenizer) Issue(clientID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := t.now()
	claims := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{AudienceState},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
		Nonce: hex.EncodeToString(nonce),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature, expiry, audience, and client binding.
func (t *JWTStateTokenizer) Verify(tokenStr, clientID string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithAudience(AudienceState), jwt.WithTimeFunc(t.now))

	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStateMismatch, err)
	}
	if !token.Valid {
		return core.ErrStateMismatch
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || claims.Subject != clientID || claims.Nonce == "" {
		return core.ErrStateMismatch
	}
	return nil
}
