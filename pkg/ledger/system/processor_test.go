package system

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrowfi/escrow-program/pkg/ledger"
)

func TestCreateAccount(t *testing.T) {
	l := ledger.New()
	Register(l)

	keys := generateKeys(t, 3)
	funder, address, owner := keys[0], keys[1], keys[2]

	l.Fund(funder, 1_000_000)

	instruction := CreateAccount(funder, address, owner, 500_000, 42)
	require.NoError(t, l.Submit(instruction, funder, address))

	account, ok := l.GetAccount(address)
	require.True(t, ok)
	assert.EqualValues(t, 500_000, account.Lamports)
	assert.EqualValues(t, owner, account.Owner)
	assert.Len(t, account.Data, 42)

	remaining, ok := l.GetAccount(funder)
	require.True(t, ok)
	assert.EqualValues(t, 500_000, remaining.Lamports)

	// The address is now occupied.
	err := l.Submit(instruction, funder, address)
	assert.Equal(t, ErrAccountAlreadyInUse, err)
}

func TestCreateAccount_InsufficientFunds(t *testing.T) {
	l := ledger.New()
	Register(l)

	keys := generateKeys(t, 3)
	funder, address, owner := keys[0], keys[1], keys[2]

	l.Fund(funder, 100)

	err := l.Submit(CreateAccount(funder, address, owner, 500_000, 42), funder, address)
	assert.Equal(t, ErrInsufficientFunds, err)
}

func TestCreateAccount_MissingSignatures(t *testing.T) {
	l := ledger.New()
	Register(l)

	keys := generateKeys(t, 3)
	funder, address, owner := keys[0], keys[1], keys[2]

	l.Fund(funder, 1_000_000)

	instruction := CreateAccount(funder, address, owner, 500_000, 42)

	err := l.Submit(instruction, funder)
	assert.Equal(t, ledger.ErrMissingRequiredSignature, err)

	err = l.Submit(instruction, address)
	assert.Equal(t, ledger.ErrMissingRequiredSignature, err)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
