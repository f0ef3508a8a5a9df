package core

import "errors"

var (
	ErrMissingClientID      = errors.New("client id is required")
	ErrInvalidAPIKey        = errors.New("api key validation failed")
	ErrPopupBlocked         = errors.New("authentication popup was blocked")
	ErrAuthRejected         = errors.New("authentication rejected by provider")
	ErrLoginAbandoned       = errors.New("authentication popup closed before completion")
	ErrStateMismatch        = errors.New("correlation state mismatch")
	ErrNoSession            = errors.New("no active session")
	ErrWalletNotReady       = errors.New("wallet is not ready")
	ErrUnsupportedChain     = errors.New("unsupported chain")
	ErrReceiptTimeout       = errors.New("timed out waiting for transaction receipt")
	ErrStoreOperationFailed = errors.New("store operation failed")
)
