package token

import (
	"strings"

	"synthchain/crypto"
)

// MintCapability authorizes issuing and destroying units of exactly one mint.
// The issuance engine receives one per synthetic mint at construction; callers
// never hold one, which keeps unit issuance behind the engine's own derived
// authority rather than a caller-supplied credential.
type MintCapability struct {
	mint string
}

// NewMintCapability scopes a capability to the given mint identifier.
func NewMintCapability(mint string) MintCapability {
	return MintCapability{mint: strings.ToUpper(strings.TrimSpace(mint))}
}

// Covers reports whether the capability authorizes operations on the mint.
func (c MintCapability) Covers(mint string) bool {
	return c.mint != "" && c.mint == strings.ToUpper(strings.TrimSpace(mint))
}

// VaultCapability authorizes moving funds out of exactly one custody account.
// Deposits into custody are ordinary transfers signed by the depositor; only
// withdrawals require the capability.
type VaultCapability struct {
	vault crypto.Address
	mint  string
}

// NewVaultCapability scopes a capability to one custody account and mint.
func NewVaultCapability(vault crypto.Address, mint string) VaultCapability {
	return VaultCapability{vault: vault, mint: strings.ToUpper(strings.TrimSpace(mint))}
}

// Covers reports whether the capability authorizes withdrawals of the mint
// from the custody account.
func (c VaultCapability) Covers(vault crypto.Address, mint string) bool {
	if c.vault.IsZero() || c.mint == "" {
		return false
	}
	return c.vault.Equal(vault) && c.mint == strings.ToUpper(strings.TrimSpace(mint))
}

// Vault returns the custody account the capability is scoped to.
func (c VaultCapability) Vault() crypto.Address {
	return c.vault
}
