package bgzf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// searchWindow is the size of one backward scan window. A window always
// overlaps the previous one by a few bytes so a magic sequence split
// across the boundary is still seen.
const (
	searchWindow  = 64 * 1024
	windowOverlap = 3
)

// BlockLocator finds BGZF block boundaries by scanning backward from a
// byte offset near end-of-file. Candidate magic matches are
// cross-validated: a candidate is accepted only if its declared size
// lands exactly on the scan limit, on end-of-file, or on another magic
// sequence. This rejects magic byte runs that occur inside compressed
// payloads.
type BlockLocator struct {
	r      io.ReaderAt
	size   int64
	budget int
}

// NewBlockLocator creates a locator over a file of the given size.
// searchBudget bounds the total number of bytes scanned backward before
// the locator gives up on finding a boundary.
func NewBlockLocator(r io.ReaderAt, size int64, searchBudget int) *BlockLocator {
	return &BlockLocator{r: r, size: size, budget: searchBudget}
}

// LastBlockBefore returns the block with the largest start offset
// strictly below limit that parses and cross-validates.
func (l *BlockLocator) LastBlockBefore(limit int64) (types.CompressedBlock, error) {
	if limit > l.size {
		limit = l.size
	}
	if limit < types.MinBlockSize {
		return types.CompressedBlock{}, fmt.Errorf("no room for a block before offset %d: %w", limit, types.ErrInvalidFile)
	}

	scanned := 0
	winEnd := limit
	for winEnd > 0 && scanned < l.budget {
		winStart := winEnd - searchWindow
		if winStart < 0 {
			winStart = 0
		}
		buf := make([]byte, winEnd-winStart)
		if _, err := l.r.ReadAt(buf, winStart); err != nil {
			return types.CompressedBlock{}, fmt.Errorf("reading scan window at %d: %w", winStart, err)
		}

		// Walk candidates from the highest offset down so the first
		// accepted block is the last one in file order.
		for i := len(buf) - 4; i >= 0; i-- {
			if !HasMagic(buf[i:]) {
				continue
			}
			off := winStart + int64(i)
			blk, err := BlockAt(l.r, off, l.size)
			if err != nil {
				continue
			}
			if l.validEnd(blk.End(), limit) {
				return blk, nil
			}
		}

		scanned += len(buf)
		if winStart == 0 {
			break
		}
		winEnd = winStart + windowOverlap
	}
	return types.CompressedBlock{}, fmt.Errorf("scanned %d bytes before offset %d: %w", scanned, limit, types.ErrNoBlockBoundary)
}

// validEnd accepts a candidate whose declared end coincides with the scan
// limit or end-of-file, or whose end is the start of another block. A
// writer caught mid-header may leave fewer than four bytes after the last
// complete block; those still mark a boundary when they are a prefix of
// the magic.
func (l *BlockLocator) validEnd(end, limit int64) bool {
	if end == limit || end == l.size {
		return true
	}
	if end > l.size-4 {
		trailing := make([]byte, l.size-end)
		if _, err := l.r.ReadAt(trailing, end); err != nil {
			return false
		}
		magic := []byte{types.BGZFMagic0, types.BGZFMagic1, types.BGZFMagic2}
		return bytes.Equal(trailing, magic[:len(trailing)])
	}
	probe := make([]byte, 4)
	if _, err := l.r.ReadAt(probe, end); err != nil {
		return false
	}
	return HasMagic(probe)
}
