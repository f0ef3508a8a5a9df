package core

import "github.com/ethereum/go-ethereum/common"

// User is the unified user record. Two writers converge on it: the identity
// provider callback writes identity fields, and wallet account sync writes
// address fields. Both go through the Apply reducers so the merge rule is a
// code-level contract rather than implicit shared state.
type User struct {
	ID                  string         `json:"id"`
	ExternalID          string         `json:"externalId"`
	Username            string         `json:"username"`
	Picture             string         `json:"picture,omitempty"`
	Verified            bool           `json:"isVerified,omitempty"`
	WalletAddress       common.Address `json:"walletAddress,omitempty"`
	SmartAccountAddress common.Address `json:"smartAccountAddress,omitempty"`
	SignerAddress       common.Address `json:"signerAddress,omitempty"`
	ActiveChainID       uint64         `json:"activeChainId,omitempty"`
}

// IdentityUpdate carries the fields owned by the identity provider.
type IdentityUpdate struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Username   string `json:"username"`
	Picture    string `json:"picture"`
	Verified   bool   `json:"isVerified"`
}

// WalletUpdate carries the fields owned by the wallet provider.
type WalletUpdate struct {
	SignerAddress       common.Address
	SmartAccountAddress common.Address
	ChainID             uint64
}

// ApplyIdentity returns a copy of the user with identity fields replaced.
// Wallet fields are untouched.
func (u User) ApplyIdentity(upd IdentityUpdate) User {
	u.ID = upd.ID
	u.ExternalID = upd.ExternalID
	u.Username = upd.Username
	u.Picture = upd.Picture
	u.Verified = upd.Verified
	return u
}

// ApplyWallet returns a copy of the user with wallet fields replaced.
// WalletAddress resolves to the smart account when one exists, otherwise the
// underlying signer.
func (u User) ApplyWallet(upd WalletUpdate) User {
	u.SignerAddress = upd.SignerAddress
	u.SmartAccountAddress = upd.SmartAccountAddress
	if upd.SmartAccountAddress != (common.Address{}) {
		u.WalletAddress = upd.SmartAccountAddress
	} else {
		u.WalletAddress = upd.SignerAddress
	}
	u.ActiveChainID = upd.ChainID
	return u
}
