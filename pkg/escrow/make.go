package escrow

import (
	"bytes"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/ledger/system"
	"github.com/escrowfi/escrow-program/pkg/ledger/token"
	"github.com/escrowfi/escrow-program/pkg/solana/binary"
)

// make opens a new deal: it creates the record and vault accounts and moves
// the maker's deposit into custody.
//
// Accounts expected:
//
//  0. `[writable, signer]` maker
//  1. `[]` mint A, the mint being deposited
//  2. `[]` mint B, the mint wanted in return
//  3. `[writable]` maker's mint A token account
//  4. `[writable]` vault, to be created
//  5. `[writable]` record, to be created
//  6. `[]` system program
//  7. `[]` token program
//  8. `[]` associated token program
func (p *Processor) make(ctx *ledger.InstructionContext, data []byte) error {
	accounts := ctx.Accounts()
	if len(accounts) < 9 {
		return ledger.ErrNotEnoughAccountKeys
	}
	maker, mintA, mintB, makerTokenA, vault, record := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]

	if err := checkSigner(maker); err != nil {
		return err
	}
	if err := checkOwnedBy(token.ProgramKey, mintA, mintB, makerTokenA); err != nil {
		return err
	}
	if err := checkUninitialized(vault, record); err != nil {
		return err
	}

	if len(data) != MakeInstructionArgsSize {
		return ledger.ErrInvalidInstructionData
	}
	var args MakeInstructionArgs
	var offset int
	binary.GetUint64(data, &args.AmountA, &offset)
	binary.GetUint64(data[offset:], &args.AmountB, &offset)
	binary.GetUint8(data[offset:], &args.Seed, &offset)
	binary.GetUint8(data[offset:], &args.Bump, &offset)

	if err := checkAmount(args.AmountA); err != nil {
		return err
	}
	if err := checkAmount(args.AmountB); err != nil {
		return err
	}

	// The canonical bump is always recomputed here rather than trusted from
	// the caller; Take and Refund trust the stored value and only re-verify.
	derived, bump, err := GetEscrowAddress(&GetEscrowAddressArgs{
		Maker: maker.Address,
		Seed:  args.Seed,
	})
	if err != nil || bump != args.Bump || !bytes.Equal(derived, record.Address) {
		return ErrorAddressMismatch
	}

	expectedVault, err := GetVaultAddress(record.Address, mintA.Address)
	if err != nil || !bytes.Equal(expectedVault, vault.Address) {
		return ErrorAddressMismatch
	}

	// Create the record account, signed by its own derivation proof.
	seeds := [][]byte{EscrowPrefix, maker.Address, {args.Seed}, {bump}}
	err = ctx.InvokeSigned(
		system.CreateAccount(
			maker.Address,
			record.Address,
			ProgramKey,
			ctx.Rent().MinimumBalance(EscrowAccountSize),
			EscrowAccountSize,
		),
		seeds,
	)
	if err != nil {
		return err
	}

	state := &Escrow{
		MintB:   mintB.Address,
		AmountB: args.AmountB,
		Seed:    args.Seed,
		Bump:    bump,
	}
	record.SetData(state.Marshal())

	createVault, _, err := token.CreateAssociatedTokenAccount(maker.Address, record.Address, mintA.Address)
	if err != nil {
		return err
	}
	if err := ctx.Invoke(createVault); err != nil {
		return err
	}

	var mintState token.Mint
	if !mintState.Unmarshal(mintA.Data()) {
		return ErrorAccountNotInitialized
	}

	return ctx.Invoke(token.TransferChecked(
		makerTokenA.Address,
		mintA.Address,
		vault.Address,
		maker.Address,
		args.AmountA,
		mintState.Decimals,
	))
}
