// Package services orchestrates the tail pipeline: backward block
// location, decompression and record scanning, plus rendering of the
// resolved tail.
package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/deploymenttheory/go-bamtail/internal/device"
	"github.com/deploymenttheory/go-bamtail/internal/interfaces"
	"github.com/deploymenttheory/go-bamtail/internal/parsers/bam"
	"github.com/deploymenttheory/go-bamtail/internal/parsers/bgzf"
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// frontierError marks a block whose integrity check failed. The file is
// append-only, so everything at and after the block's offset is treated
// as untrusted and the resolve restarts one block earlier.
type frontierError struct {
	offset int64
	err    error
}

func (e *frontierError) Error() string {
	return fmt.Sprintf("untrusted frontier at offset %d: %v", e.offset, e.err)
}

func (e *frontierError) Unwrap() error {
	return e.err
}

// ResolveTail reports the most recent alignment in a position-sorted BAM
// by locating and decompressing BGZF blocks backward from the end of the
// file until the final record boundary is confirmed.
func ResolveTail(src interfaces.BlockSource, cfg *device.TailConfig) (types.TailResult, error) {
	size := src.Size()
	if size < types.MinBlockSize {
		return types.TailResult{}, fmt.Errorf("file is %d bytes: %w", size, types.ErrInvalidFile)
	}

	limit := size
	hasEOF, err := bgzf.HasEOFMarker(src, size)
	if err != nil {
		return types.TailResult{}, fmt.Errorf("checking EOF marker: %w", err)
	}
	if hasEOF {
		// The marker is a zero-payload block; exclude it from scanning.
		limit -= int64(len(types.EOFMarker))
	}

	var locator interfaces.BlockLocator = bgzf.NewBlockLocator(src, size, cfg.SearchBudgetBytes)
	var decompressor interfaces.BlockDecompressor = bgzf.NewBlockDecompressor(src)

	integrityFailures := 0
	for {
		res, err := resolveFrom(locator, decompressor, limit, cfg)
		if err == nil {
			return res, nil
		}
		var frontier *frontierError
		if !errors.As(err, &frontier) {
			return types.TailResult{}, err
		}
		integrityFailures++
		if integrityFailures > cfg.IntegrityRetryLimit {
			return types.TailResult{}, fmt.Errorf("%d consecutive corrupt blocks: %w", integrityFailures, types.ErrBlockIntegrity)
		}
		log.Printf("bamtail: skipping corrupt block at offset %d, retrying one block earlier", frontier.offset)
		limit = frontier.offset
	}
}

// resolveFrom runs one backward accumulation pass over the blocks ending
// at limit. Acceptance of a scan depends on whether the buffer is
// anchored at the start of the decompressed stream:
//
//   - unanchored buffers accept only an exact landing, since the walk
//     start is a guessed block boundary rather than a known record
//     boundary;
//   - anchored buffers additionally accept a short landing (a truncated
//     trailing record) and resolve Empty on an exact landing with no
//     records.
func resolveFrom(locator interfaces.BlockLocator, decompressor interfaces.BlockDecompressor, limit int64, cfg *device.TailConfig) (types.TailResult, error) {
	var scanner interfaces.RecordScanner = bam.NewRecordScanner()
	cursor := limit
	blocks := 0
	for {
		if blocks >= cfg.MaxAccumulateBlocks {
			return types.TailResult{}, fmt.Errorf("no record boundary within %d blocks: %w", blocks, types.ErrRecordStream)
		}

		blk, err := locator.LastBlockBefore(cursor)
		if err != nil {
			return types.TailResult{}, err
		}
		chunk, err := decompressor.DecompressBlock(blk)
		if err != nil {
			if errors.Is(err, types.ErrBlockIntegrity) {
				return types.TailResult{}, &frontierError{offset: blk.Offset, err: err}
			}
			return types.TailResult{}, err
		}

		scanner.PushFront(chunk)
		blocks++

		rec, n, landing := scanner.Scan()
		anchored := blk.Offset == 0
		switch {
		case anchored && landing == types.LandingExact && n == 0:
			return types.TailResult{Status: types.TailEmpty}, nil
		case n >= 1 && (landing == types.LandingExact || (anchored && landing == types.LandingShort)):
			return tailFromRecord(rec), nil
		case anchored:
			// The whole stream is in the buffer and it still does not
			// frame cleanly.
			return types.TailResult{}, fmt.Errorf("record framing unresolved with full stream buffered: %w", types.ErrRecordStream)
		}
		cursor = blk.Offset
	}
}

// tailFromRecord maps the resolved record to a result. Position is never
// reported for unmapped records, whatever value the field holds.
func tailFromRecord(rec types.AlignmentRecord) types.TailResult {
	if !rec.IsMapped() {
		return types.TailResult{Status: types.TailUnmapped}
	}
	return types.TailResult{Status: types.TailPosition, RefID: rec.RefID, Pos: rec.Pos}
}
