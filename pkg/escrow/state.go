package escrow

import (
	"crypto/ed25519"

	"github.com/escrowfi/escrow-program/pkg/ledger"
	"github.com/escrowfi/escrow-program/pkg/solana/binary"
)

// EscrowAccountSize is the exact size of a serialized escrow record. The
// layout is frozen: any future extension requires a new record kind, never a
// reinterpretation of these offsets.
const EscrowAccountSize = 42

// Escrow is the persistent record of one open deal: the mint and amount the
// maker wants in return, plus the seed and bump needed to re-derive (and so
// re-verify) the record's own address.
type Escrow struct {
	// The mint the maker wants to receive.
	MintB ed25519.PublicKey
	// The amount of MintB required to settle the deal.
	AmountB uint64
	// Maker-chosen seed, allowing multiple concurrent deals per maker.
	Seed uint8
	// Canonical bump of the record's derived address, stored at creation
	// so settlement never re-searches.
	Bump uint8
}

func (e *Escrow) Marshal() []byte {
	b := make([]byte, EscrowAccountSize)

	var offset int
	binary.PutKey32(b, e.MintB, &offset)
	binary.PutUint64(b[offset:], e.AmountB, &offset)
	binary.PutUint8(b[offset:], e.Seed, &offset)
	binary.PutUint8(b[offset:], e.Bump, &offset)

	return b
}

func (e *Escrow) Unmarshal(b []byte) bool {
	if len(b) != EscrowAccountSize {
		return false
	}

	var offset int
	binary.GetKey32(b, &e.MintB, &offset)
	binary.GetUint64(b[offset:], &e.AmountB, &offset)
	binary.GetUint8(b[offset:], &e.Seed, &offset)
	binary.GetUint8(b[offset:], &e.Bump, &offset)

	return true
}

// GetEscrowFromAccount decodes the record backing an open deal. An account
// not owned by the escrow program means no deal exists there (never created,
// or already settled or cancelled); storage of the wrong size means the
// account holds something that was never a record.
func GetEscrowFromAccount(info *ledger.AccountInfo) (*Escrow, error) {
	if !info.OwnedBy(ProgramKey) {
		return nil, ErrorAccountNotInitialized
	}

	var state Escrow
	if !state.Unmarshal(info.Data()) {
		return nil, ErrorInvalidRecordLength
	}

	return &state, nil
}
