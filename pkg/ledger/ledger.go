package ledger

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/escrowfi/escrow-program/pkg/solana"
)

// Nested invocations beyond this depth are rejected, mirroring the on-chain
// CPI limit.
const maxInvokeDepth = 4

var (
	ErrNotEnoughAccountKeys     = errors.New("not enough account keys")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrUnknownProgram           = errors.New("unknown program")
	ErrCallDepthExceeded        = errors.New("call depth exceeded")
	ErrIncorrectProgramID       = errors.New("incorrect program id")
	ErrInvalidAccountData       = errors.New("invalid account data")
	ErrInvalidSeeds             = errors.New("invalid seeds")
)

// Program executes a single instruction against the accounts it was given.
// Implementations must return an error to abort; the runtime rolls the whole
// submission back on any failure.
type Program interface {
	Execute(ctx *InstructionContext) error
}

// Ledger is an in-memory account ledger that executes instructions one at a
// time, atomically. It stands in for the hosting chain: accounts keyed by
// address, program executors keyed by program address, and a full-commit or
// full-abort contract around every submission.
//
// Signature verification is modeled, not performed: the signer addresses
// passed to Submit are treated as having supplied valid transaction
// signatures.
type Ledger struct {
	log      *logrus.Entry
	rent     Rent
	accounts map[string]*Account
	programs map[string]Program
}

func New() *Ledger {
	return &Ledger{
		log:      logrus.StandardLogger().WithField("type", "ledger"),
		rent:     DefaultRent,
		accounts: make(map[string]*Account),
		programs: make(map[string]Program),
	}
}

func (l *Ledger) Rent() Rent {
	return l.rent
}

// RegisterProgram installs an executor for the provided program address.
func (l *Ledger) RegisterProgram(address ed25519.PublicKey, p Program) {
	l.programs[string(address)] = p
}

// GetAccount returns a copy of the account at the provided address, or false
// if the address holds no account.
func (l *Ledger) GetAccount(address ed25519.PublicKey) (*Account, bool) {
	account, ok := l.accounts[string(address)]
	if !ok {
		return nil, false
	}
	return account.clone(), true
}

// SetAccount installs account state directly, bypassing program execution.
// Intended for test setup.
func (l *Ledger) SetAccount(address ed25519.PublicKey, account *Account) {
	l.accounts[string(address)] = account.clone()
}

// Fund credits lamports to the account at the provided address, creating it
// if needed.
func (l *Ledger) Fund(address ed25519.PublicKey, lamports uint64) {
	account := l.loadOrCreate(address)
	account.Lamports += lamports
}

// Submit executes a single instruction as one atomic unit. Every account
// meta flagged as a signer must have a matching entry in signers. On any
// error the ledger is restored to its pre-submission state and the error is
// returned verbatim.
func (l *Ledger) Submit(instruction solana.Instruction, signers ...ed25519.PublicKey) error {
	log := l.log.WithFields(logrus.Fields{
		"method":  "Submit",
		"program": base58.Encode(instruction.Program),
	})

	signed := make(map[string]struct{})
	for _, signer := range signers {
		signed[string(signer)] = struct{}{}
	}

	snapshot := l.snapshot()
	if err := l.execute(instruction, signed, 0); err != nil {
		l.accounts = snapshot
		log.WithError(err).Debug("instruction aborted")
		return err
	}

	l.reap()
	log.Debug("instruction committed")
	return nil
}

func (l *Ledger) execute(instruction solana.Instruction, signed map[string]struct{}, depth int) error {
	if depth > maxInvokeDepth {
		return ErrCallDepthExceeded
	}

	program, ok := l.programs[string(instruction.Program)]
	if !ok {
		return ErrUnknownProgram
	}

	infos := make([]*AccountInfo, len(instruction.Accounts))
	for i, meta := range instruction.Accounts {
		_, isSigned := signed[string(meta.PublicKey)]
		if meta.IsSigner && !isSigned {
			return ErrMissingRequiredSignature
		}

		infos[i] = &AccountInfo{
			Address:    meta.PublicKey,
			IsSigner:   meta.IsSigner && isSigned,
			IsWritable: meta.IsWritable,
			account:    l.loadOrCreate(meta.PublicKey),
		}
	}

	return program.Execute(&InstructionContext{
		ledger:   l,
		program:  instruction.Program,
		accounts: infos,
		data:     instruction.Data,
		signed:   signed,
		depth:    depth,
	})
}

func (l *Ledger) loadOrCreate(address ed25519.PublicKey) *Account {
	account, ok := l.accounts[string(address)]
	if !ok {
		account = newAccount()
		l.accounts[string(address)] = account
	}
	return account
}

func (l *Ledger) snapshot() map[string]*Account {
	snapshot := make(map[string]*Account, len(l.accounts))
	for k, v := range l.accounts {
		snapshot[k] = v.clone()
	}
	return snapshot
}

// reap removes accounts left without lamports after a successful submission,
// the same garbage collection the hosting chain performs.
func (l *Ledger) reap() {
	for k, v := range l.accounts {
		if v.Lamports == 0 && len(v.Data) == 0 {
			delete(l.accounts, k)
		}
	}
}

// InstructionContext is the view a program executor receives: the invoked
// program, the ordered account list, the instruction payload, and entry
// points for cross-program invocation.
type InstructionContext struct {
	ledger   *Ledger
	program  ed25519.PublicKey
	accounts []*AccountInfo
	data     []byte
	signed   map[string]struct{}
	depth    int
}

func (c *InstructionContext) Program() ed25519.PublicKey {
	return c.program
}

func (c *InstructionContext) Accounts() []*AccountInfo {
	return c.accounts
}

func (c *InstructionContext) Data() []byte {
	return c.data
}

func (c *InstructionContext) Rent() Rent {
	return c.ledger.rent
}

// Invoke executes a nested instruction. Signer privileges held by the
// current invocation flow through to the callee.
func (c *InstructionContext) Invoke(instruction solana.Instruction) error {
	return c.ledger.execute(instruction, c.signed, c.depth+1)
}

// InvokeSigned executes a nested instruction with additional derived-address
// signatures. Each seed group authorizes exactly the address produced by
// deriving it against the calling program: presenting the seeds is the proof
// of authority, no private key is involved.
func (c *InstructionContext) InvokeSigned(instruction solana.Instruction, seedGroups ...[][]byte) error {
	signed := make(map[string]struct{}, len(c.signed)+len(seedGroups))
	for k := range c.signed {
		signed[k] = struct{}{}
	}

	for _, seeds := range seedGroups {
		address, err := solana.CreateProgramAddress(c.program, seeds...)
		if err != nil {
			return errors.Wrap(err, "failed to derive signer address")
		}
		signed[string(address)] = struct{}{}
	}

	return c.ledger.execute(instruction, signed, c.depth+1)
}
