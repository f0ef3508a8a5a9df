package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletkit/walletkit/core"
)

func TestIssueAndVerify(t *testing.T) {
	tk := NewJWTStateTokenizer([]byte("secret"))

	token, err := tk.Issue("client_1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, tk.Verify(token, "client_1"))
}

func TestVerifyRejectsWrongClient(t *testing.T) {
	tk := NewJWTStateTokenizer([]byte("secret"))

	token, err := tk.Issue("client_1")
	require.NoError(t, err)

	assert.ErrorIs(t, tk.Verify(token, "client_2"), core.ErrStateMismatch)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := NewJWTStateTokenizer([]byte("secret-a"))
	verifier := NewJWTStateTokenizer([]byte("secret-b"))

	token, err := issuer.Issue("client_1")
	require.NoError(t, err)

	assert.ErrorIs(t, verifier.Verify(token, "client_1"), core.ErrStateMismatch)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tk := NewJWTStateTokenizer(nil)
	assert.ErrorIs(t, tk.Verify("not-a-token", "client_1"), core.ErrStateMismatch)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tk := NewJWTStateTokenizer([]byte("secret"))

	token, err := tk.Issue("client_1")
	require.NoError(t, err)

	tk.now = func() time.Time { return time.Now().Add(DefaultStateExpiry + time.Minute) }
	assert.ErrorIs(t, tk.Verify(token, "client_1"), core.ErrStateMismatch)
}

func TestTokensAreUnique(t *testing.T) {
	tk := NewJWTStateTokenizer([]byte("secret"))

	a, err := tk.Issue("client_1")
	require.NoError(t, err)
	b, err := tk.Issue("client_1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
