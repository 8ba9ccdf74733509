// Package bgzf locates and decompresses BGZF blocks without reading the
// containing file from the start.
package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// maxHeaderProbe is the number of bytes read when parsing a candidate
// block header: the fixed gzip header plus the largest extra field we
// accept before giving up on the candidate.
const maxHeaderProbe = types.BGZFHeaderSize + 256

// HasMagic reports whether b begins with the BGZF magic byte sequence.
func HasMagic(b []byte) bool {
	return len(b) >= 4 &&
		b[0] == types.BGZFMagic0 && b[1] == types.BGZFMagic1 &&
		b[2] == types.BGZFMagic2 && b[3] == types.BGZFMagic3
}

// HasEOFMarker reports whether the final bytes of the file are the fixed
// empty BGZF block that terminates a well-formed file.
func HasEOFMarker(r io.ReaderAt, size int64) (bool, error) {
	if size < int64(len(types.EOFMarker)) {
		return false, nil
	}
	b := make([]byte, len(types.EOFMarker))
	if _, err := r.ReadAt(b, size-int64(len(types.EOFMarker))); err != nil {
		return false, fmt.Errorf("reading EOF marker candidate: %w", err)
	}
	return bytes.Equal(b, types.EOFMarker[:]), nil
}

// BlockAt parses the BGZF block header starting at off and returns its
// descriptor. The declared compressed size must lie entirely inside
// fileSize; the footer fields are read from the declared block end.
func BlockAt(r io.ReaderAt, off, fileSize int64) (types.CompressedBlock, error) {
	var blk types.CompressedBlock
	if off < 0 || fileSize-off < types.MinBlockSize {
		return blk, fmt.Errorf("block at %d: %w", off, types.ErrInvalidFile)
	}

	hdr := make([]byte, maxHeaderProbe)
	if fileSize-off < int64(len(hdr)) {
		hdr = hdr[:fileSize-off]
	}
	if _, err := r.ReadAt(hdr, off); err != nil {
		return blk, fmt.Errorf("reading block header at %d: %w", off, err)
	}
	if !HasMagic(hdr) {
		return blk, fmt.Errorf("block at %d: missing BGZF magic: %w", off, types.ErrInvalidFile)
	}

	// The extra field follows MTIME, XFL and OS; XLEN is at bytes 10-11.
	xlen := int(binary.LittleEndian.Uint16(hdr[10:12]))
	if types.BGZFHeaderSize+xlen > len(hdr) {
		return blk, fmt.Errorf("block at %d: extra field of %d bytes overruns probe: %w", off, xlen, types.ErrInvalidFile)
	}

	total, err := blockSizeFromExtra(hdr[types.BGZFHeaderSize : types.BGZFHeaderSize+xlen])
	if err != nil {
		return blk, fmt.Errorf("block at %d: %w", off, err)
	}
	if total < types.MinBlockSize || total > types.MaxBlockSize || off+int64(total) > fileSize {
		return blk, fmt.Errorf("block at %d: declared size %d out of bounds: %w", off, total, types.ErrInvalidFile)
	}

	footer := make([]byte, types.BGZFFooterSize)
	if _, err := r.ReadAt(footer, off+int64(total)-types.BGZFFooterSize); err != nil {
		return blk, fmt.Errorf("reading block footer at %d: %w", off, err)
	}
	isize := binary.LittleEndian.Uint32(footer[4:8])
	if isize > types.MaxBlockSize {
		return blk, fmt.Errorf("block at %d: declared uncompressed size %d out of bounds: %w", off, isize, types.ErrInvalidFile)
	}

	blk = types.CompressedBlock{
		Offset:           off,
		CompressedSize:   total,
		UncompressedSize: int(isize),
		CRC32:            binary.LittleEndian.Uint32(footer[0:4]),
	}
	return blk, nil
}

// blockSizeFromExtra walks the gzip extra subfields looking for the BC
// subfield and returns the declared total block length (BSIZE plus one).
func blockSizeFromExtra(extra []byte) (int, error) {
	for off := 0; off+4 <= len(extra); {
		si1, si2 := extra[off], extra[off+1]
		slen := int(binary.LittleEndian.Uint16(extra[off+2 : off+4]))
		if si1 == 'B' && si2 == 'C' {
			if slen != 2 || off+6 > len(extra) {
				return 0, fmt.Errorf("malformed BC subfield: %w", types.ErrInvalidFile)
			}
			return int(binary.LittleEndian.Uint16(extra[off+4:off+6])) + 1, nil
		}
		off += 4 + slen
	}
	return 0, fmt.Errorf("no BC subfield in extra field: %w", types.ErrInvalidFile)
}
