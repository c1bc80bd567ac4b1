package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/ledger/system"
	"github.com/escrowfi/escrow-program/pkg/solana"
)

// AssociatedProgramKey is the address of the associated token account
// program.
//
// Current key: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
var AssociatedProgramKey = ed25519.PublicKey{140, 151, 37, 143, 78, 36, 137, 241, 187, 61, 16, 41, 20, 142, 13, 131, 11, 90, 19, 153, 218, 255, 16, 132, 4, 142, 123, 216, 219, 233, 248, 89}

// GetAssociatedAccount returns the canonical token account address for a
// (wallet, mint) pair.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	addr, _, err := GetAssociatedAccountAndBump(wallet, mint)
	return addr, err
}

// GetAssociatedAccountAndBump returns the canonical token account address
// for a (wallet, mint) pair, along with its bump seed.
func GetAssociatedAccountAndBump(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		AssociatedProgramKey,
		wallet,
		ProgramKey,
		mint,
	)
}

// CreateAssociatedTokenAccount returns an instruction that creates and
// initializes the associated token account for the (wallet, mint) pair,
// funded by the subsidizer. The derived address is returned alongside.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/0639953c7dd0f5228c3ceda3ba68fece3b46ff1d/associated-token-account/program/src/lib.rs#L54
func CreateAssociatedTokenAccount(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	addr, err := GetAssociatedAccount(wallet, mint)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	return solana.NewInstruction(
		AssociatedProgramKey,
		[]byte{},
		solana.NewAccountMeta(subsidizer, true),
		solana.NewAccountMeta(addr, false),
		solana.NewReadonlyAccountMeta(wallet, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	), addr, nil
}

// AssociatedProcessor executes the associated token account program: it
// re-derives the canonical address, creates the account via the system
// program (signed with the derived address's own seed proof) and hands it to
// the token program for initialization.
type AssociatedProcessor struct {
}

func NewAssociatedProcessor() *AssociatedProcessor {
	return &AssociatedProcessor{}
}

// RegisterAssociated installs the associated token account program on the
// provided ledger.
func RegisterAssociated(l *ledger.Ledger) {
	l.RegisterProgram(AssociatedProgramKey, NewAssociatedProcessor())
}

func (p *AssociatedProcessor) Execute(ctx *ledger.InstructionContext) error {
	if len(ctx.Data()) != 0 {
		return ledger.ErrInvalidInstructionData
	}

	accounts := ctx.Accounts()
	if len(accounts) < 6 {
		return ledger.ErrNotEnoughAccountKeys
	}
	subsidizer, account, wallet, mint := accounts[0], accounts[1], accounts[2], accounts[3]

	if !subsidizer.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}

	derived, bump, err := GetAssociatedAccountAndBump(wallet.Address, mint.Address)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, account.Address) {
		return ledger.ErrInvalidSeeds
	}

	seeds := [][]byte{wallet.Address, ProgramKey, mint.Address, {bump}}
	err = ctx.InvokeSigned(
		system.CreateAccount(
			subsidizer.Address,
			account.Address,
			ProgramKey,
			ctx.Rent().MinimumBalance(AccountSize),
			AccountSize,
		),
		seeds,
	)
	if err != nil {
		return err
	}

	return ctx.Invoke(InitializeAccount(account.Address, mint.Address, wallet.Address))
}
