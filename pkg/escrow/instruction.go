package escrow

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/escrowfi/escrow-program/pkg/ledger/system"
	"github.com/escrowfi/escrow-program/pkg/ledger/token"
	"github.com/escrowfi/escrow-program/pkg/solana"
	"github.com/escrowfi/escrow-program/pkg/solana/binary"
)

const (
	MakeInstructionArgsSize = (8 + // amount_a
		8 + // amount_b
		1 + // seed
		1) // bump
)

type MakeInstructionArgs struct {
	AmountA uint64
	AmountB uint64
	Seed    uint8
	Bump    uint8
}

type MakeInstructionAccounts struct {
	Maker       ed25519.PublicKey
	MintA       ed25519.PublicKey
	MintB       ed25519.PublicKey
	MakerTokenA ed25519.PublicKey
	Vault       ed25519.PublicKey
	Record      ed25519.PublicKey
}

func NewMakeInstruction(
	accounts *MakeInstructionAccounts,
	args *MakeInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+MakeInstructionArgsSize)

	binary.PutUint8(data, uint8(CommandMake), &offset)
	binary.PutUint64(data[offset:], args.AmountA, &offset)
	binary.PutUint64(data[offset:], args.AmountB, &offset)
	binary.PutUint8(data[offset:], args.Seed, &offset)
	binary.PutUint8(data[offset:], args.Bump, &offset)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(accounts.Maker, true),
		solana.NewReadonlyAccountMeta(accounts.MintA, false),
		solana.NewReadonlyAccountMeta(accounts.MintB, false),
		solana.NewAccountMeta(accounts.MakerTokenA, false),
		solana.NewAccountMeta(accounts.Vault, false),
		solana.NewAccountMeta(accounts.Record, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.AssociatedProgramKey, false),
	)
}

func DecompileMake(ins solana.Instruction) (*MakeInstructionAccounts, *MakeInstructionArgs, error) {
	if !bytes.Equal(ins.Program, ProgramKey) {
		return nil, nil, solana.ErrIncorrectProgram
	}
	if len(ins.Data) == 0 || Command(ins.Data[0]) != CommandMake {
		return nil, nil, solana.ErrIncorrectInstruction
	}
	if len(ins.Data) != 1+MakeInstructionArgsSize {
		return nil, nil, errors.Errorf("invalid instruction data size: %d", len(ins.Data))
	}
	if len(ins.Accounts) != 9 {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ins.Accounts))
	}

	var args MakeInstructionArgs
	var offset int
	data := ins.Data[1:]
	binary.GetUint64(data, &args.AmountA, &offset)
	binary.GetUint64(data[offset:], &args.AmountB, &offset)
	binary.GetUint8(data[offset:], &args.Seed, &offset)
	binary.GetUint8(data[offset:], &args.Bump, &offset)

	return &MakeInstructionAccounts{
		Maker:       ins.Accounts[0].PublicKey,
		MintA:       ins.Accounts[1].PublicKey,
		MintB:       ins.Accounts[2].PublicKey,
		MakerTokenA: ins.Accounts[3].PublicKey,
		Vault:       ins.Accounts[4].PublicKey,
		Record:      ins.Accounts[5].PublicKey,
	}, &args, nil
}

type TakeInstructionAccounts struct {
	Taker       ed25519.PublicKey
	Maker       ed25519.PublicKey
	MintA       ed25519.PublicKey
	MintB       ed25519.PublicKey
	TakerTokenA ed25519.PublicKey
	TakerTokenB ed25519.PublicKey
	Vault       ed25519.PublicKey
	MakerTokenB ed25519.PublicKey
	Record      ed25519.PublicKey
}

func NewTakeInstruction(accounts *TakeInstructionAccounts) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandTake)},
		solana.NewAccountMeta(accounts.Taker, true),
		solana.NewReadonlyAccountMeta(accounts.Maker, false),
		solana.NewReadonlyAccountMeta(accounts.MintA, false),
		solana.NewReadonlyAccountMeta(accounts.MintB, false),
		solana.NewAccountMeta(accounts.TakerTokenA, false),
		solana.NewAccountMeta(accounts.TakerTokenB, false),
		solana.NewAccountMeta(accounts.Vault, false),
		solana.NewAccountMeta(accounts.MakerTokenB, false),
		solana.NewAccountMeta(accounts.Record, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}

func DecompileTake(ins solana.Instruction) (*TakeInstructionAccounts, error) {
	if !bytes.Equal(ins.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ins.Data) == 0 || Command(ins.Data[0]) != CommandTake {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ins.Accounts) != 11 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ins.Accounts))
	}

	return &TakeInstructionAccounts{
		Taker:       ins.Accounts[0].PublicKey,
		Maker:       ins.Accounts[1].PublicKey,
		MintA:       ins.Accounts[2].PublicKey,
		MintB:       ins.Accounts[3].PublicKey,
		TakerTokenA: ins.Accounts[4].PublicKey,
		TakerTokenB: ins.Accounts[5].PublicKey,
		Vault:       ins.Accounts[6].PublicKey,
		MakerTokenB: ins.Accounts[7].PublicKey,
		Record:      ins.Accounts[8].PublicKey,
	}, nil
}

type RefundInstructionAccounts struct {
	Maker       ed25519.PublicKey
	MintA       ed25519.PublicKey
	MintB       ed25519.PublicKey
	MakerTokenA ed25519.PublicKey
	Vault       ed25519.PublicKey
	Record      ed25519.PublicKey
}

func NewRefundInstruction(accounts *RefundInstructionAccounts) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandRefund)},
		solana.NewAccountMeta(accounts.Maker, true),
		solana.NewReadonlyAccountMeta(accounts.MintA, false),
		solana.NewReadonlyAccountMeta(accounts.MintB, false),
		solana.NewAccountMeta(accounts.MakerTokenA, false),
		solana.NewAccountMeta(accounts.Vault, false),
		solana.NewAccountMeta(accounts.Record, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}

func DecompileRefund(ins solana.Instruction) (*RefundInstructionAccounts, error) {
	if !bytes.Equal(ins.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ins.Data) == 0 || Command(ins.Data[0]) != CommandRefund {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ins.Accounts) != 8 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ins.Accounts))
	}

	return &RefundInstructionAccounts{
		Maker:       ins.Accounts[0].PublicKey,
		MintA:       ins.Accounts[1].PublicKey,
		MintB:       ins.Accounts[2].PublicKey,
		MakerTokenA: ins.Accounts[3].PublicKey,
		Vault:       ins.Accounts[4].PublicKey,
		Record:      ins.Accounts[5].PublicKey,
	}, nil
}
