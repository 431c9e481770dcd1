package token

import (
	"errors"
	"strings"

	"synthchain/core/state"
	"synthchain/crypto"
	nativecommon "synthchain/native/common"
)

var (
	ErrInvalidAmount     = errors.New("token: amount must be positive")
	ErrInvalidMint       = errors.New("token: mint identifier required")
	ErrInvalidAddress    = errors.New("token: address required")
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrUnauthorized      = errors.New("token: capability does not cover operation")
)

// Ledger moves fungible units between accounts and issues or destroys them
// under capability control. It operates on whatever state view it is bound
// to, so a request-scoped transaction keeps every move inside one atomic
// commit.
type Ledger struct {
	kv state.KV
}

// NewLedger binds a ledger to the provided state view.
func NewLedger(kv state.KV) *Ledger {
	return &Ledger{kv: kv}
}

// Balance returns the units of mint held by addr. Missing balances are zero.
func (l *Ledger) Balance(addr crypto.Address, mint string) (uint64, error) {
	if l == nil || l.kv == nil {
		return 0, errors.New("token: ledger not configured")
	}
	if strings.TrimSpace(mint) == "" {
		return 0, ErrInvalidMint
	}
	if addr.IsZero() {
		return 0, ErrInvalidAddress
	}
	var balance uint64
	ok, err := l.kv.KVGet(balanceKey(mint, addr.Bytes()), &balance)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return balance, nil
}

func (l *Ledger) setBalance(addr crypto.Address, mint string, balance uint64) error {
	return l.kv.KVPut(balanceKey(mint, addr.Bytes()), balance)
}

// Transfer moves amount units of mint from one account to another. The
// caller-side debit fails with ErrInsufficientFunds before any credit is
// staged.
func (l *Ledger) Transfer(from, to crypto.Address, mint string, amount uint64) error {
	if l == nil || l.kv == nil {
		return errors.New("token: ledger not configured")
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if from.IsZero() || to.IsZero() {
		return ErrInvalidAddress
	}
	fromBalance, err := l.Balance(from, mint)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientFunds
	}
	toBalance, err := l.Balance(to, mint)
	if err != nil {
		return err
	}
	newFrom, err := nativecommon.SubU64(fromBalance, amount)
	if err != nil {
		return err
	}
	newTo, err := nativecommon.AddU64(toBalance, amount)
	if err != nil {
		return err
	}
	if err := l.setBalance(from, mint, newFrom); err != nil {
		return err
	}
	return l.setBalance(to, mint, newTo)
}

// Mint issues amount new units of mint to the recipient. Only a capability
// scoped to the mint may issue.
func (l *Ledger) Mint(mint string, to crypto.Address, amount uint64, cap MintCapability) error {
	if l == nil || l.kv == nil {
		return errors.New("token: ledger not configured")
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if to.IsZero() {
		return ErrInvalidAddress
	}
	if !cap.Covers(mint) {
		return ErrUnauthorized
	}
	balance, err := l.Balance(to, mint)
	if err != nil {
		return err
	}
	updated, err := nativecommon.AddU64(balance, amount)
	if err != nil {
		return err
	}
	return l.setBalance(to, mint, updated)
}

// Burn destroys amount units of mint held by the account. The holder's own
// request authorizes the burn; the capability gate applies to issuance and
// custody withdrawals, not to destroying one's own units.
func (l *Ledger) Burn(mint string, from crypto.Address, amount uint64) error {
	if l == nil || l.kv == nil {
		return errors.New("token: ledger not configured")
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if from.IsZero() {
		return ErrInvalidAddress
	}
	balance, err := l.Balance(from, mint)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	updated, err := nativecommon.SubU64(balance, amount)
	if err != nil {
		return err
	}
	return l.setBalance(from, mint, updated)
}

// VaultWithdraw moves amount units out of the named custody account. The
// capability must be scoped to exactly that custody account and mint; a
// capability for another vault never authorizes the withdrawal, whatever
// mint it carries.
func (l *Ledger) VaultWithdraw(cap VaultCapability, vault, to crypto.Address, mint string, amount uint64) error {
	if l == nil || l.kv == nil {
		return errors.New("token: ledger not configured")
	}
	if !cap.Covers(vault, mint) {
		return ErrUnauthorized
	}
	return l.Transfer(vault, to, mint, amount)
}
