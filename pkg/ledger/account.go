package ledger

import (
	"bytes"
	"crypto/ed25519"
)

// SystemOwner is the owner assigned to accounts that no program has claimed.
//
// It doubles as the system program's own address, mirroring the all-zero
// key "11111111111111111111111111111111".
var SystemOwner = ed25519.PublicKey(make([]byte, ed25519.PublicKeySize))

// Account is the persisted state of a single ledger account.
type Account struct {
	Owner    ed25519.PublicKey
	Lamports uint64
	Data     []byte
}

func newAccount() *Account {
	return &Account{
		Owner: SystemOwner,
	}
}

func (a *Account) clone() *Account {
	cloned := &Account{
		Owner:    append(ed25519.PublicKey{}, a.Owner...),
		Lamports: a.Lamports,
	}
	if a.Data != nil {
		cloned.Data = append([]byte{}, a.Data...)
	}
	return cloned
}

// AccountInfo is an instruction-scoped view of an account: the address and
// the signer/writable flags from the instruction's account meta, backed by
// the shared account state.
type AccountInfo struct {
	Address    ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	account *Account
}

// Owner returns the program that owns the account.
func (a *AccountInfo) Owner() ed25519.PublicKey {
	return a.account.Owner
}

// OwnedBy reports whether the account is owned by the provided program.
func (a *AccountInfo) OwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.account.Owner, program)
}

// Assign hands ownership of the account to the provided program.
func (a *AccountInfo) Assign(program ed25519.PublicKey) {
	a.account.Owner = append(ed25519.PublicKey{}, program...)
}

func (a *AccountInfo) Lamports() uint64 {
	return a.account.Lamports
}

func (a *AccountInfo) SetLamports(v uint64) {
	a.account.Lamports = v
}

func (a *AccountInfo) Data() []byte {
	return a.account.Data
}

func (a *AccountInfo) SetData(b []byte) {
	a.account.Data = b
}

// Allocate sizes the account's data to the provided length, zeroed.
func (a *AccountInfo) Allocate(size uint64) {
	a.account.Data = make([]byte, size)
}
