package ports

// StateTokenizer issues and verifies the opaque correlation tokens that bind
// a handshake attempt to its completion message.
type StateTokenizer interface {
	// Issue creates a fresh correlation token for the given client id.
	Issue(clientID string) (string, error)

	// Verify checks that the token was issued by this tokenizer for the
	// given client id and has not expired.
	Verify(token, clientID string) error
}
