package interfaces

import (
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// BlockSource is the read surface the tail pipeline needs from an open
// alignment file: positioned reads plus the total file size.
type BlockSource interface {
	// ReadAt reads len(p) bytes starting at byte offset off.
	ReadAt(p []byte, off int64) (n int, err error)

	// Size returns the total file size in bytes.
	Size() int64
}

// BlockLocator finds BGZF block boundaries by scanning backward from a
// byte offset near end-of-file.
type BlockLocator interface {
	// LastBlockBefore returns the block with the largest start offset
	// strictly below limit whose header cross-validates against the
	// block it claims to precede.
	LastBlockBefore(limit int64) (types.CompressedBlock, error)
}

// BlockDecompressor inflates one located block into its raw payload.
type BlockDecompressor interface {
	// DecompressBlock returns the decompressed payload of blk after
	// verifying its declared uncompressed size and CRC32.
	DecompressBlock(blk types.CompressedBlock) ([]byte, error)
}
