// Package types implements data structures for the BGZF block-compression
// container and the BAM alignment format.
// This package is based on the Sequence Alignment/Map Format Specification
// (SAMv1, section 4).
package types

// BGZF block framing constants.
// A BGZF block is a gzip member with the FEXTRA flag set and a "BC" extra
// subfield that declares the total on-disk length of the block.

const (
	// BGZFMagic0 through BGZFMagic3 are the first four bytes of every
	// BGZF block: gzip ID1, ID2, the deflate compression method, and the
	// FEXTRA flag byte.
	BGZFMagic0 = 0x1f
	BGZFMagic1 = 0x8b
	BGZFMagic2 = 0x08
	BGZFMagic3 = 0x04

	// BGZFHeaderSize is the fixed gzip member header length that precedes
	// the extra field.
	BGZFHeaderSize = 12

	// BGZFFooterSize covers the trailing CRC32 and ISIZE words.
	BGZFFooterSize = 8

	// MinBlockSize is the smallest legal BGZF block: fixed header, BC
	// extra subfield, empty deflate stream and footer. The EOF marker
	// block is exactly this size.
	MinBlockSize = 28

	// MaxBlockSize bounds both the compressed and the decompressed
	// payload of a single BGZF block.
	MaxBlockSize = 0x10000
)

// EOFMarker is the fixed empty BGZF block that terminates a well-formed
// file. Its presence distinguishes a finished file from one that is still
// being appended to.
var EOFMarker = [MinBlockSize]byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// CompressedBlock describes one located BGZF block. It is discovered by
// the block locator and consumed once by the block decompressor.
type CompressedBlock struct {
	// Byte offset of the block start in the file.
	Offset int64
	// Total on-disk block length, the declared BSIZE plus one.
	CompressedSize int
	// Declared length of the decompressed payload (ISIZE).
	UncompressedSize int
	// Declared CRC32 (IEEE) over the decompressed payload.
	CRC32 uint32
}

// End returns the file offset one past the block's last byte.
func (b CompressedBlock) End() int64 {
	return b.Offset + int64(b.CompressedSize)
}

// Validate checks that the declared sizes are within the bounds the BGZF
// format allows.
func (b CompressedBlock) Validate() bool {
	return b.Offset >= 0 &&
		b.CompressedSize >= MinBlockSize && b.CompressedSize <= MaxBlockSize &&
		b.UncompressedSize >= 0 && b.UncompressedSize <= MaxBlockSize
}
