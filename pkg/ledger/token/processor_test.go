package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/ledger/system"
	"github.com/escrowfi/escrow-program/pkg/solana"
)

type testEnv struct {
	ledger     *ledger.Ledger
	subsidizer ed25519.PublicKey
}

func newTestEnv(t *testing.T) *testEnv {
	l := ledger.New()
	system.Register(l)
	Register(l)
	RegisterAssociated(l)

	subsidizer := generateKeys(t, 1)[0]
	l.Fund(subsidizer, 1_000_000_000)

	return &testEnv{
		ledger:     l,
		subsidizer: subsidizer,
	}
}

func (e *testEnv) createMint(t *testing.T, authority ed25519.PublicKey, decimals uint8) ed25519.PublicKey {
	mint := generateKeys(t, 1)[0]

	require.NoError(t, e.ledger.Submit(
		system.CreateAccount(
			e.subsidizer,
			mint,
			ProgramKey,
			ledger.DefaultRent.MinimumBalance(MintSize),
			MintSize,
		),
		e.subsidizer,
		mint,
	))
	require.NoError(t, e.ledger.Submit(InitializeMint(mint, authority, decimals)))

	return mint
}

func (e *testEnv) createTokenAccount(t *testing.T, wallet, mint ed25519.PublicKey) ed25519.PublicKey {
	instruction, addr, err := CreateAssociatedTokenAccount(e.subsidizer, wallet, mint)
	require.NoError(t, err)
	require.NoError(t, e.ledger.Submit(instruction, e.subsidizer))
	return addr
}

func (e *testEnv) balance(t *testing.T, address ed25519.PublicKey) uint64 {
	account, ok := e.ledger.GetAccount(address)
	require.True(t, ok)

	var state Account
	require.True(t, state.Unmarshal(account.Data))
	return state.Amount
}

func TestInitializeMint(t *testing.T) {
	env := newTestEnv(t)
	authority := generateKeys(t, 1)[0]

	mint := env.createMint(t, authority, 6)

	account, ok := env.ledger.GetAccount(mint)
	require.True(t, ok)

	var state Mint
	require.True(t, state.Unmarshal(account.Data))
	assert.EqualValues(t, authority, state.Authority)
	assert.EqualValues(t, 6, state.Decimals)
	assert.True(t, state.Initialized)
	assert.Zero(t, state.Supply)

	err := env.ledger.Submit(InitializeMint(mint, authority, 6))
	assert.Equal(t, ErrorAlreadyInUse, err)
}

func TestInitializeMint_NotRentExempt(t *testing.T) {
	env := newTestEnv(t)
	keys := generateKeys(t, 2)
	authority, mint := keys[0], keys[1]

	require.NoError(t, env.ledger.Submit(
		system.CreateAccount(
			env.subsidizer,
			mint,
			ProgramKey,
			ledger.DefaultRent.MinimumBalance(MintSize)-1,
			MintSize,
		),
		env.subsidizer,
		mint,
	))

	err := env.ledger.Submit(InitializeMint(mint, authority, 6))
	assert.Equal(t, ErrorNotRentExempt, err)
}

func TestMintTo(t *testing.T) {
	env := newTestEnv(t)
	keys := generateKeys(t, 2)
	authority, wallet := keys[0], keys[1]

	mint := env.createMint(t, authority, 6)
	tokenAccount := env.createTokenAccount(t, wallet, mint)

	require.NoError(t, env.ledger.Submit(MintTo(mint, tokenAccount, authority, 500), authority))
	assert.EqualValues(t, 500, env.balance(t, tokenAccount))

	mintAccount, ok := env.ledger.GetAccount(mint)
	require.True(t, ok)
	var mintState Mint
	require.True(t, mintState.Unmarshal(mintAccount.Data))
	assert.EqualValues(t, 500, mintState.Supply)

	// Only the mint authority may issue tokens.
	err := env.ledger.Submit(MintTo(mint, tokenAccount, wallet, 500), wallet)
	assert.Equal(t, ErrorOwnerMismatch, err)

	// The destination must belong to the mint.
	other := env.createMint(t, authority, 6)
	otherAccount := env.createTokenAccount(t, wallet, other)
	err = env.ledger.Submit(MintTo(mint, otherAccount, authority, 500), authority)
	assert.Equal(t, ErrorMintMismatch, err)
}

func TestTransferChecked(t *testing.T) {
	env := newTestEnv(t)
	keys := generateKeys(t, 3)
	authority, alice, bob := keys[0], keys[1], keys[2]

	mint := env.createMint(t, authority, 6)
	aliceAccount := env.createTokenAccount(t, alice, mint)
	bobAccount := env.createTokenAccount(t, bob, mint)

	require.NoError(t, env.ledger.Submit(MintTo(mint, aliceAccount, authority, 1000), authority))

	require.NoError(t, env.ledger.Submit(
		TransferChecked(aliceAccount, mint, bobAccount, alice, 400, 6),
		alice,
	))
	assert.EqualValues(t, 600, env.balance(t, aliceAccount))
	assert.EqualValues(t, 400, env.balance(t, bobAccount))

	err := env.ledger.Submit(
		TransferChecked(aliceAccount, mint, bobAccount, alice, 601, 6),
		alice,
	)
	assert.Equal(t, ErrorInsufficientFunds, err)

	err = env.ledger.Submit(
		TransferChecked(aliceAccount, mint, bobAccount, alice, 100, 9),
		alice,
	)
	assert.Equal(t, ErrorMintDecimalsMismatch, err)

	err = env.ledger.Submit(
		TransferChecked(aliceAccount, mint, bobAccount, bob, 100, 6),
		bob,
	)
	assert.Equal(t, ErrorOwnerMismatch, err)

	// A self transfer must not create or destroy tokens.
	require.NoError(t, env.ledger.Submit(
		TransferChecked(aliceAccount, mint, aliceAccount, alice, 600, 6),
		alice,
	))
	assert.EqualValues(t, 600, env.balance(t, aliceAccount))
}

func TestCloseAccount(t *testing.T) {
	env := newTestEnv(t)
	keys := generateKeys(t, 3)
	authority, alice, bob := keys[0], keys[1], keys[2]

	mint := env.createMint(t, authority, 6)
	aliceAccount := env.createTokenAccount(t, alice, mint)
	bobAccount := env.createTokenAccount(t, bob, mint)

	require.NoError(t, env.ledger.Submit(MintTo(mint, aliceAccount, authority, 100), authority))

	err := env.ledger.Submit(CloseAccount(aliceAccount, alice, alice), alice)
	assert.Equal(t, ErrorNonNativeHasBalance, err)

	require.NoError(t, env.ledger.Submit(
		TransferChecked(aliceAccount, mint, bobAccount, alice, 100, 6),
		alice,
	))

	// Only the account owner may close it.
	err = env.ledger.Submit(CloseAccount(aliceAccount, bob, bob), bob)
	assert.Equal(t, ErrorOwnerMismatch, err)

	rent, ok := env.ledger.GetAccount(aliceAccount)
	require.True(t, ok)

	require.NoError(t, env.ledger.Submit(CloseAccount(aliceAccount, alice, alice), alice))

	_, ok = env.ledger.GetAccount(aliceAccount)
	assert.False(t, ok)

	dest, ok := env.ledger.GetAccount(alice)
	require.True(t, ok)
	assert.Equal(t, rent.Lamports, dest.Lamports)
}

func TestCreateAssociatedTokenAccount(t *testing.T) {
	env := newTestEnv(t)
	keys := generateKeys(t, 2)
	authority, wallet := keys[0], keys[1]

	mint := env.createMint(t, authority, 6)

	instruction, addr, err := CreateAssociatedTokenAccount(env.subsidizer, wallet, mint)
	require.NoError(t, err)

	expected, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)
	assert.EqualValues(t, expected, addr)

	require.NoError(t, env.ledger.Submit(instruction, env.subsidizer))

	account, ok := env.ledger.GetAccount(addr)
	require.True(t, ok)
	assert.EqualValues(t, ProgramKey, account.Owner)

	var state Account
	require.True(t, state.Unmarshal(account.Data))
	assert.EqualValues(t, mint, state.Mint)
	assert.EqualValues(t, wallet, state.Owner)
	assert.Equal(t, AccountStateInitialized, state.State)

	// The supplied account must match the derived address.
	bogus := generateKeys(t, 1)[0]
	forged := solana.NewInstruction(
		AssociatedProgramKey,
		[]byte{},
		solana.NewAccountMeta(env.subsidizer, true),
		solana.NewAccountMeta(bogus, false),
		solana.NewReadonlyAccountMeta(wallet, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
	err = env.ledger.Submit(forged, env.subsidizer)
	assert.Equal(t, ledger.ErrInvalidSeeds, err)
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
