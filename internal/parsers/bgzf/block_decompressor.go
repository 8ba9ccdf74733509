package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// BlockDecompressor inflates located BGZF blocks and verifies their
// declared uncompressed sizes and CRC32 footers. It holds no state
// between blocks; decompression is a pure transformation.
type BlockDecompressor struct {
	r io.ReaderAt
}

// NewBlockDecompressor creates a decompressor reading from r.
func NewBlockDecompressor(r io.ReaderAt) *BlockDecompressor {
	return &BlockDecompressor{r: r}
}

// DecompressBlock returns the decompressed payload of blk. A payload that
// inflates to the wrong length or fails its CRC32 check returns
// ErrBlockIntegrity; the caller treats the block as an untrusted frontier
// and retries one block earlier.
func (d *BlockDecompressor) DecompressBlock(blk types.CompressedBlock) ([]byte, error) {
	if !blk.Validate() {
		return nil, fmt.Errorf("block at %d: descriptor out of bounds: %w", blk.Offset, types.ErrInvalidFile)
	}

	raw := make([]byte, blk.CompressedSize)
	if _, err := d.r.ReadAt(raw, blk.Offset); err != nil {
		return nil, fmt.Errorf("reading block at %d: %w", blk.Offset, err)
	}
	if !HasMagic(raw) {
		return nil, fmt.Errorf("block at %d: missing BGZF magic: %w", blk.Offset, types.ErrInvalidFile)
	}

	xlen := int(binary.LittleEndian.Uint16(raw[10:12]))
	payloadStart := types.BGZFHeaderSize + xlen
	payloadEnd := blk.CompressedSize - types.BGZFFooterSize
	if payloadStart > payloadEnd {
		return nil, fmt.Errorf("block at %d: header overruns footer: %w", blk.Offset, types.ErrBlockIntegrity)
	}

	fr := flate.NewReader(bytes.NewReader(raw[payloadStart:payloadEnd]))
	defer fr.Close()

	var out bytes.Buffer
	out.Grow(blk.UncompressedSize)
	// Limit one byte past the maximum so an overlong stream is detected
	// by the length check below instead of inflating without bound.
	if _, err := io.Copy(&out, io.LimitReader(fr, types.MaxBlockSize+1)); err != nil {
		return nil, fmt.Errorf("inflating block at %d: %v: %w", blk.Offset, err, types.ErrBlockIntegrity)
	}

	data := out.Bytes()
	if len(data) != blk.UncompressedSize {
		return nil, fmt.Errorf("block at %d: inflated %d bytes, declared %d: %w",
			blk.Offset, len(data), blk.UncompressedSize, types.ErrBlockIntegrity)
	}
	if crc := crc32.ChecksumIEEE(data); crc != blk.CRC32 {
		return nil, fmt.Errorf("block at %d: CRC32 %08x, declared %08x: %w",
			blk.Offset, crc, blk.CRC32, types.ErrBlockIntegrity)
	}
	return data, nil
}
