package escrow

import (
	"bytes"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/ledger/token"
)

// refund cancels an open deal: the entire vault balance returns to the
// maker, and the vault and record are closed with their rent returned. Only
// the maker may cancel; a deal with no taker remains cancellable
// indefinitely.
//
// Accounts expected:
//
//  0. `[writable, signer]` maker
//  1. `[]` mint A, the deposited mint
//  2. `[]` mint B, the wanted mint
//  3. `[writable]` maker's mint A token account
//  4. `[writable]` vault
//  5. `[writable]` record
//  6. `[]` system program
//  7. `[]` token program
func (p *Processor) refund(ctx *ledger.InstructionContext) error {
	accounts := ctx.Accounts()
	if len(accounts) < 6 {
		return ledger.ErrNotEnoughAccountKeys
	}
	maker, mintA, mintB, makerTokenA, vault, record := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]

	if err := checkSigner(maker); err != nil {
		return err
	}
	if err := checkOwnedBy(token.ProgramKey, mintA, mintB); err != nil {
		return err
	}

	// Validated before any token account, for the same reason as in take: a
	// deal that no longer exists must fail on the record.
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

	if err := checkOwnedBy(token.ProgramKey, makerTokenA, vault); err != nil {
		return err
	}
	if _, err := checkTokenAccount(makerTokenA, maker.Address, mintA); err != nil {
		return err
	}
	vaultState, err := checkTokenAccount(vault, record.Address, mintA)
	if err != nil {
		return err
	}

	var mintAState token.Mint
	if !mintAState.Unmarshal(mintA.Data()) {
		return ErrorAccountNotInitialized
	}

	// Return the entire vault balance to the maker, authorized by the
	// record's derivation proof.
	seeds := [][]byte{EscrowPrefix, maker.Address, {state.Seed}, {state.Bump}}
	err = ctx.InvokeSigned(token.TransferChecked(
		vault.Address,
		mintA.Address,
		makerTokenA.Address,
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
