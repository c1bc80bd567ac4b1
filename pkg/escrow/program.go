// Package escrow implements a trustless two-party token swap program.
//
// A maker locks a quantity of one mint in a vault and records the mint and
// amount wanted in return; any taker may settle the deal atomically, or the
// maker may refund and reclaim the deposit. The escrow record account is the
// sole authority for "deal is pending": it exists exactly while a deal is
// open, and its derived address doubles as the vault's owning authority.
package escrow

import (
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/escrowfi/escrow-program/pkg/ledger"
)

// ProgramKey is the address of the escrow program.
//
// Current key: 4ibrEMW5F6hKnkW4jVedswYv6H6VtwPN6ar6dvXDN1nT
var ProgramKey = ed25519.PublicKey{55, 59, 71, 17, 142, 133, 82, 138, 18, 162, 148, 13, 228, 66, 149, 251, 246, 44, 92, 85, 94, 18, 60, 215, 192, 21, 129, 253, 131, 160, 85, 84}

type Command byte

const (
	CommandMake Command = iota
	CommandTake
	CommandRefund
)

// Processor executes escrow program instructions. Every handler runs its
// full validation set before touching any state; the hosting ledger
// guarantees that a failure at any point leaves no partial effect.
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "escrow/processor"),
	}
}

// Register installs the escrow program on the provided ledger.
func Register(l *ledger.Ledger) {
	l.RegisterProgram(ProgramKey, NewProcessor())
}

func (p *Processor) Execute(ctx *ledger.InstructionContext) error {
	data := ctx.Data()
	if len(data) == 0 {
		return ledger.ErrInvalidInstructionData
	}

	switch Command(data[0]) {
	case CommandMake:
		return p.make(ctx, data[1:])
	case CommandTake:
		return p.take(ctx)
	case CommandRefund:
		return p.refund(ctx)
	default:
		return ledger.ErrInvalidInstructionData
	}
}
