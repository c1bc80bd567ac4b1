package solana

import (
	"fmt"
)

// CustomError is a numerical error code returned by a program. The meaning
// of each code is scoped to the program that returned it.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %#x", int(c))
}
