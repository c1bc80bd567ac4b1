package ledger

const (
	// Accounts carry metadata beyond their raw data, which rent is also
	// charged for.
	accountStorageOverhead = 128
)

// Rent holds the parameters used to price account storage. Values mirror the
// on-chain rent sysvar defaults; accounts in this runtime are always expected
// to be rent exempt.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2,
}

// MinimumBalance returns the lamport balance at which an account holding
// dataLen bytes becomes rent exempt.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	return (accountStorageOverhead + dataLen) * r.LamportsPerByteYear * r.ExemptionThreshold
}
