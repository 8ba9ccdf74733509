package interfaces

import (
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// RecordScanner reconstructs alignment records from decompressed chunks
// supplied in reverse block order (last block in the file first).
type RecordScanner interface {
	// PushFront prepends a chunk that precedes everything accumulated so
	// far in file order.
	PushFront(chunk []byte)

	// Scan walks the accumulated buffer forward record by record and
	// reports the last complete record, the number of complete records,
	// and how the walk ended relative to the buffer end.
	Scan() (last types.AlignmentRecord, n int, landing types.Landing)
}
