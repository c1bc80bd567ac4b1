package escrow

import (
	"bytes"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/ledger/token"
)

// take settles an open deal: the taker pays the wanted amount of mint B to
// the maker, receives the entire vault balance of mint A, and both the vault
// and the record are closed with their rent returned to the maker.
//
// Accounts expected:
//
//  0. `[writable, signer]` taker
//  1. `[]` maker
//  2. `[]` mint A, the deposited mint
//  3. `[]` mint B, the wanted mint
//  4. `[writable]` taker's mint A token account
//  5. `[writable]` taker's mint B token account
//  6. `[writable]` vault
//  7. `[writable]` maker's mint B token account
//  8. `[writable]` record
//  9. `[]` system program
// 10. `[]` token program
func (p *Processor) take(ctx *ledger.InstructionContext) error {
	accounts := ctx.Accounts()
	if len(accounts) < 9 {
		return ledger.ErrNotEnoughAccountKeys
	}
	taker, maker, mintA, mintB := accounts[0], accounts[1], accounts[2], accounts[3]
	takerTokenA, takerTokenB, vault, makerTokenB, record := accounts[4], accounts[5], accounts[6], accounts[7], accounts[8]

	if err := checkSigner(taker); err != nil {
		return err
	}
	if err := checkOwnedBy(token.ProgramKey, mintA, mintB); err != nil {
		return err
	}

	// The record is the sole authority on whether a deal is pending, so it is
	// validated before any token account. A settled or cancelled deal fails
	// here, not on the (already reaped) vault.
	state, err := GetEscrowFromAccount(record)
	if err != nil {
		return err
	}
	if err := checkEscrowAddress(record, maker.Address, state.Seed, state.Bump); err != nil {
		return err
	}
	if !bytes.Equal(state.MintB, mintB.Address) {
		return ErrorMintMismatch
	}

	if err := checkOwnedBy(token.ProgramKey, takerTokenA, takerTokenB, vault, makerTokenB); err != nil {
		return err
	}
	if _, err := checkTokenAccount(takerTokenA, taker.Address, mintA); err != nil {
		return err
	}
	if _, err := checkTokenAccount(takerTokenB, taker.Address, mintB); err != nil {
		return err
	}
	vaultState, err := checkTokenAccount(vault, record.Address, mintA)
	if err != nil {
		return err
	}
	if _, err := checkTokenAccount(makerTokenB, maker.Address, mintB); err != nil {
		return err
	}

	var mintAState, mintBState token.Mint
	if !mintAState.Unmarshal(mintA.Data()) || !mintBState.Unmarshal(mintB.Data()) {
		return ErrorAccountNotInitialized
	}

	// Pay the maker the wanted amount of mint B.
	err = ctx.Invoke(token.TransferChecked(
		takerTokenB.Address,
		mintB.Address,
		makerTokenB.Address,
		taker.Address,
		state.AmountB,
		mintBState.Decimals,
	))
	if err != nil {
		return err
	}

	// Release the entire vault balance to the taker, authorized by the
	// record's derivation proof.
	seeds := [][]byte{EscrowPrefix, maker.Address, {state.Seed}, {state.Bump}}
	err = ctx.InvokeSigned(token.TransferChecked(
		vault.Address,
		mintA.Address,
		takerTokenA.Address,
		record.Address,
		vaultState.Amount,
		mintAState.Decimals,
	), seeds)
	if err != nil {
		return err
	}

	err = ctx.InvokeSigned(token.CloseAccount(
		vault.Address,
		maker.Address,
		record.Address,
	), seeds)
	if err != nil {
		return err
	}

	closeRecord(record, maker)
	return nil
}

// closeRecord deletes an escrow record, returning its rent to the
// destination account. With zero lamports and no data the account is reaped
// by the ledger once the instruction commits.
func closeRecord(record, dest *ledger.AccountInfo) {
	dest.SetLamports(dest.Lamports() + record.Lamports())
	record.SetLamports(0)
	record.SetData(nil)
	record.Assign(ledger.SystemOwner)
}
