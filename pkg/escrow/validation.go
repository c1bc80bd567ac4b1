package escrow

import (
	"bytes"
	"crypto/ed25519"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/ledger/token"
)

// The checks below are pure predicates over the supplied accounts: no side
// effects, invoked in a fixed order by every handler before any state
// mutation. No check is skipped on the assumption that a later one would
// catch the same malformed input.

func checkSigner(info *ledger.AccountInfo) error {
	if !info.IsSigner {
		return ErrorMissingSignature
	}
	return nil
}

func checkOwnedBy(program ed25519.PublicKey, infos ...*ledger.AccountInfo) error {
	for _, info := range infos {
		if !info.OwnedBy(program) {
			return ErrorInvalidAccountOwner
		}
	}
	return nil
}

// checkUninitialized requires that the accounts have not been claimed by any
// program yet.
func checkUninitialized(infos ...*ledger.AccountInfo) error {
	for _, info := range infos {
		if !info.OwnedBy(ledger.SystemOwner) {
			return ErrorAccountAlreadyInitialized
		}
	}
	return nil
}

// checkTokenAccount decodes a token account and requires that it is held by
// the expected owner for the expected mint, returning the decoded state.
func checkTokenAccount(info *ledger.AccountInfo, owner ed25519.PublicKey, mint *ledger.AccountInfo) (*token.Account, error) {
	var state token.Account
	if !state.Unmarshal(info.Data()) {
		return nil, ErrorAccountNotInitialized
	}

	if !bytes.Equal(state.Owner, owner) {
		return nil, ErrorOwnerMismatch
	}
	if !bytes.Equal(state.Mint, mint.Address) {
		return nil, ErrorMintMismatch
	}

	return &state, nil
}

// checkEscrowAddress re-derives the record address from its stored fields
// and requires that it matches the account actually supplied. This is what
// stops an attacker substituting their own account in the record's position.
func checkEscrowAddress(info *ledger.AccountInfo, maker ed25519.PublicKey, seed, bump uint8) error {
	derived, err := GetEscrowAddressWithBump(&GetEscrowAddressWithBumpArgs{
		Maker: maker,
		Seed:  seed,
		Bump:  bump,
	})
	if err != nil || !bytes.Equal(derived, info.Address) {
		return ErrorAddressMismatch
	}
	return nil
}

func checkAmount(amount uint64) error {
	if amount == 0 {
		return ErrorInvalidAmount
	}
	return nil
}
