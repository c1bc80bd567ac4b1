package escrow

import (
	"crypto/ed25519"

	"github.com/escrowfi/escrow-program/pkg/ledger/token"
	"github.com/escrowfi/escrow-program/pkg/solana"
)

// EscrowPrefix is the domain tag under which all escrow record addresses are
// derived.
var EscrowPrefix = []byte("escrow")

type GetEscrowAddressArgs struct {
	Maker ed25519.PublicKey
	Seed  uint8
}

// GetEscrowAddress derives the canonical record address for a (maker, seed)
// pair, searching for the canonical bump. Make computes this once and stores
// the bump in the record; Take and Refund only re-verify.
func GetEscrowAddress(args *GetEscrowAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		ProgramKey,
		EscrowPrefix,
		args.Maker,
		[]byte{args.Seed},
	)
}

type GetEscrowAddressWithBumpArgs struct {
	Maker ed25519.PublicKey
	Seed  uint8
	Bump  uint8
}

// GetEscrowAddressWithBump re-derives a record address from stored fields
// without searching.
func GetEscrowAddressWithBump(args *GetEscrowAddressWithBumpArgs) (ed25519.PublicKey, error) {
	return solana.CreateProgramAddress(
		ProgramKey,
		EscrowPrefix,
		args.Maker,
		[]byte{args.Seed},
		[]byte{args.Bump},
	)
}

// GetVaultAddress returns the vault address for a deal: the record's
// associated token account for the deposited mint.
func GetVaultAddress(record, mintA ed25519.PublicKey) (ed25519.PublicKey, error) {
	return token.GetAssociatedAccount(record, mintA)
}
