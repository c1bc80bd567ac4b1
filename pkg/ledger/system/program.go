package system

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/solana"
)

// ProgramKey is the address of the system program, the all-zero key
// 11111111111111111111111111111111. Accounts that no program has claimed are
// owned by it.
var ProgramKey = ledger.SystemOwner

// RentSysVar is the address of the rent sysvar account.
//
// Current key: SysvarRent111111111111111111111111111111111
var RentSysVar = ed25519.PublicKey{6, 167, 213, 23, 25, 44, 92, 81, 33, 140, 201, 76, 61, 74, 241, 127, 88, 218, 238, 8, 155, 161, 253, 68, 227, 219, 217, 138, 0, 0, 0, 0}

const (
	commandCreateAccount uint32 = iota
)

const createAccountDataSize = 4 + 2*8 + ed25519.PublicKeySize

// CreateAccount returns an instruction that funds a brand new account,
// allocates its storage and assigns it to the owning program.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE, SIGNER] New account
	data := make([]byte, createAccountDataSize)
	binary.LittleEndian.PutUint32(data, commandCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[4+8:], size)
	copy(data[4+2*8:], owner)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}
