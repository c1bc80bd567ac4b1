package escrow

// Error is an escrow program error code. The kind is surfaced verbatim to
// the submitting client; none of these are retried internally.
type Error uint32

const (
	ErrorMissingSignature Error = iota
	ErrorInvalidAccountOwner
	ErrorAccountAlreadyInitialized
	ErrorAccountNotInitialized
	ErrorOwnerMismatch
	ErrorMintMismatch
	ErrorAddressMismatch
	ErrorInvalidAmount
	ErrorInvalidRecordLength
)

func (e Error) Error() string {
	switch e {
	case ErrorMissingSignature:
		return "MissingSignature"
	case ErrorInvalidAccountOwner:
		return "InvalidAccountOwner"
	case ErrorAccountAlreadyInitialized:
		return "AccountAlreadyInitialized"
	case ErrorAccountNotInitialized:
		return "AccountNotInitialized"
	case ErrorOwnerMismatch:
		return "OwnerMismatch"
	case ErrorMintMismatch:
		return "MintMismatch"
	case ErrorAddressMismatch:
		return "AddressMismatch"
	case ErrorInvalidAmount:
		return "InvalidAmount"
	case ErrorInvalidRecordLength:
		return "InvalidRecordLength"
	default:
		return "Unknown"
	}
}
