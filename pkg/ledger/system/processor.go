package system

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/escrowfi/escrow-program/pkg/ledger"
)

var (
	ErrAccountAlreadyInUse = errors.New("account already in use")
	ErrInsufficientFunds   = errors.New("insufficient funds for instruction")
)

// Processor executes system program instructions against the ledger.
type Processor struct {
}

func NewProcessor() *Processor {
	return &Processor{}
}

// Register installs the system program on the provided ledger.
func Register(l *ledger.Ledger) {
	l.RegisterProgram(ProgramKey, NewProcessor())
}

func (p *Processor) Execute(ctx *ledger.InstructionContext) error {
	data := ctx.Data()
	if len(data) < 4 {
		return ledger.ErrInvalidInstructionData
	}

	switch binary.LittleEndian.Uint32(data) {
	case commandCreateAccount:
		return p.createAccount(ctx, data)
	default:
		return ledger.ErrInvalidInstructionData
	}
}

func (p *Processor) createAccount(ctx *ledger.InstructionContext, data []byte) error {
	accounts := ctx.Accounts()
	if len(accounts) < 2 {
		return ledger.ErrNotEnoughAccountKeys
	}
	funder, account := accounts[0], accounts[1]

	if len(data) != createAccountDataSize {
		return ledger.ErrInvalidInstructionData
	}
	lamports := binary.LittleEndian.Uint64(data[4:])
	size := binary.LittleEndian.Uint64(data[4+8:])
	owner := ed25519.PublicKey(data[4+2*8:])

	// Both the funder and the new account authorize creation. For derived
	// addresses the latter arrives as a seed proof from the owning program.
	if !funder.IsSigner || !account.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}

	if !account.OwnedBy(ProgramKey) || len(account.Data()) > 0 || account.Lamports() > 0 {
		return ErrAccountAlreadyInUse
	}

	if funder.Lamports() < lamports {
		return ErrInsufficientFunds
	}

	funder.SetLamports(funder.Lamports() - lamports)
	account.SetLamports(account.Lamports() + lamports)
	account.Allocate(size)
	account.Assign(owner)

	return nil
}
