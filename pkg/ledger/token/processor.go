package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/escrowfi/escrow-program/pkg/ledger"
)

// Processor executes token program instructions against the ledger. It owns
// all balance storage; other programs move value exclusively by invoking it.
type Processor struct {
}

func NewProcessor() *Processor {
	return &Processor{}
}

// Register installs the token program on the provided ledger.
func Register(l *ledger.Ledger) {
	l.RegisterProgram(ProgramKey, NewProcessor())
}

func (p *Processor) Execute(ctx *ledger.InstructionContext) error {
	data := ctx.Data()
	if len(data) == 0 {
		return ledger.ErrInvalidInstructionData
	}

	switch Command(data[0]) {
	case CommandInitializeMint:
		return p.initializeMint(ctx, data[1:])
	case CommandInitializeAccount:
		return p.initializeAccount(ctx)
	case CommandMintTo:
		return p.mintTo(ctx, data[1:])
	case CommandTransferChecked:
		return p.transferChecked(ctx, data[1:])
	case CommandCloseAccount:
		return p.closeAccount(ctx)
	default:
		return ErrorInvalidInstruction
	}
}

func (p *Processor) initializeMint(ctx *ledger.InstructionContext, data []byte) error {
	accounts := ctx.Accounts()
	if len(accounts) < 1 {
		return ledger.ErrNotEnoughAccountKeys
	}
	mint := accounts[0]

	if len(data) != 1+ed25519.PublicKeySize+1 {
		return ledger.ErrInvalidInstructionData
	}

	if !mint.OwnedBy(ProgramKey) {
		return ledger.ErrIncorrectProgramID
	}

	var state Mint
	if !state.Unmarshal(mint.Data()) {
		return ledger.ErrInvalidAccountData
	}
	if state.Initialized {
		return ErrorAlreadyInUse
	}

	if mint.Lamports() < ctx.Rent().MinimumBalance(MintSize) {
		return ErrorNotRentExempt
	}

	state.Decimals = data[0]
	state.Authority = append(ed25519.PublicKey{}, data[1:1+ed25519.PublicKeySize]...)
	state.Initialized = true
	mint.SetData(state.Marshal())

	return nil
}

func (p *Processor) initializeAccount(ctx *ledger.InstructionContext) error {
	accounts := ctx.Accounts()
	if len(accounts) < 3 {
		return ledger.ErrNotEnoughAccountKeys
	}
	account, mint, owner := accounts[0], accounts[1], accounts[2]

	if !account.OwnedBy(ProgramKey) {
		return ledger.ErrIncorrectProgramID
	}

	var state Account
	if !state.Unmarshal(account.Data()) {
		return ledger.ErrInvalidAccountData
	}
	if state.State != AccountStateUninitialized {
		return ErrorAlreadyInUse
	}

	if account.Lamports() < ctx.Rent().MinimumBalance(AccountSize) {
		return ErrorNotRentExempt
	}

	var mintState Mint
	if !mint.OwnedBy(ProgramKey) || !mintState.Unmarshal(mint.Data()) || !mintState.Initialized {
		return ErrorInvalidMint
	}

	state = Account{
		Mint:  mint.Address,
		Owner: owner.Address,
		State: AccountStateInitialized,
	}
	account.SetData(state.Marshal())

	return nil
}

func (p *Processor) mintTo(ctx *ledger.InstructionContext, data []byte) error {
	accounts := ctx.Accounts()
	if len(accounts) < 3 {
		return ledger.ErrNotEnoughAccountKeys
	}
	mint, dest, authority := accounts[0], accounts[1], accounts[2]

	if len(data) != 8 {
		return ledger.ErrInvalidInstructionData
	}
	amount := binary.LittleEndian.Uint64(data)

	mintState, err := getMint(mint)
	if err != nil {
		return err
	}
	destState, err := getTokenAccount(dest)
	if err != nil {
		return err
	}

	if !bytes.Equal(destState.Mint, mint.Address) {
		return ErrorMintMismatch
	}
	if !bytes.Equal(mintState.Authority, authority.Address) {
		return ErrorOwnerMismatch
	}
	if !authority.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}

	if destState.Amount > math.MaxUint64-amount || mintState.Supply > math.MaxUint64-amount {
		return ErrorOverflow
	}

	mintState.Supply += amount
	mint.SetData(mintState.Marshal())

	destState.Amount += amount
	dest.SetData(destState.Marshal())

	return nil
}

func (p *Processor) transferChecked(ctx *ledger.InstructionContext, data []byte) error {
	accounts := ctx.Accounts()
	if len(accounts) < 4 {
		return ledger.ErrNotEnoughAccountKeys
	}
	source, mint, dest, owner := accounts[0], accounts[1], accounts[2], accounts[3]

	if len(data) != 9 {
		return ledger.ErrInvalidInstructionData
	}
	amount := binary.LittleEndian.Uint64(data)
	decimals := data[8]

	sourceState, err := getTokenAccount(source)
	if err != nil {
		return err
	}

	mintState, err := getMint(mint)
	if err != nil {
		return err
	}

	if !bytes.Equal(sourceState.Mint, mint.Address) {
		return ErrorMintMismatch
	}
	if decimals != mintState.Decimals {
		return ErrorMintDecimalsMismatch
	}
	if !bytes.Equal(sourceState.Owner, owner.Address) {
		return ErrorOwnerMismatch
	}
	if !owner.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}
	if sourceState.Amount < amount {
		return ErrorInsufficientFunds
	}

	sourceState.Amount -= amount
	source.SetData(sourceState.Marshal())

	// Re-read the destination after the debit so that a self transfer
	// observes the updated balance.
	destState, err := getTokenAccount(dest)
	if err != nil {
		return err
	}
	if !bytes.Equal(destState.Mint, mint.Address) {
		return ErrorMintMismatch
	}
	if destState.Amount > math.MaxUint64-amount {
		return ErrorOverflow
	}
	destState.Amount += amount
	dest.SetData(destState.Marshal())

	return nil
}

func (p *Processor) closeAccount(ctx *ledger.InstructionContext) error {
	accounts := ctx.Accounts()
	if len(accounts) < 3 {
		return ledger.ErrNotEnoughAccountKeys
	}
	account, dest, owner := accounts[0], accounts[1], accounts[2]

	state, err := getTokenAccount(account)
	if err != nil {
		return err
	}

	if state.Amount != 0 {
		return ErrorNonNativeHasBalance
	}

	authority := state.Owner
	if len(state.CloseAuthority) > 0 {
		authority = state.CloseAuthority
	}
	if !bytes.Equal(authority, owner.Address) {
		return ErrorOwnerMismatch
	}
	if !owner.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}

	dest.SetLamports(dest.Lamports() + account.Lamports())
	account.SetLamports(0)
	account.SetData(nil)
	account.Assign(ledger.SystemOwner)

	return nil
}

func getMint(info *ledger.AccountInfo) (*Mint, error) {
	if !info.OwnedBy(ProgramKey) {
		return nil, ledger.ErrIncorrectProgramID
	}

	var state Mint
	if !state.Unmarshal(info.Data()) {
		return nil, ledger.ErrInvalidAccountData
	}
	if !state.Initialized {
		return nil, ErrorUninitializedState
	}

	return &state, nil
}

func getTokenAccount(info *ledger.AccountInfo) (*Account, error) {
	if !info.OwnedBy(ProgramKey) {
		return nil, ledger.ErrIncorrectProgramID
	}

	var state Account
	if !state.Unmarshal(info.Data()) {
		return nil, ledger.ErrInvalidAccountData
	}
	if state.State == AccountStateUninitialized {
		return nil, ErrorUninitializedState
	}

	return &state, nil
}
