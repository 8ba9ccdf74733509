package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-bamtail/internal/parsers/bgzf"
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// ReadReferences builds the reference catalog from the header section at
// the start of the file. The header is followed across as many leading
// BGZF blocks as it spans, up to budget decompressed bytes, so catalogs
// too large for a single block still parse.
func ReadReferences(r io.ReaderAt, size int64, budget int) ([]types.Reference, error) {
	dec := bgzf.NewBlockDecompressor(r)
	var buf []byte
	off := int64(0)
	for {
		refs, needMore, err := parseReferences(buf)
		if err != nil {
			return nil, err
		}
		if !needMore {
			return refs, nil
		}
		if off >= size {
			return nil, fmt.Errorf("header section runs past end of file: %w", types.ErrInvalidFile)
		}
		if len(buf) >= budget {
			return nil, fmt.Errorf("header section exceeds %d decompressed bytes: %w", budget, types.ErrInvalidFile)
		}

		blk, err := bgzf.BlockAt(r, off, size)
		if err != nil {
			return nil, err
		}
		chunk, err := dec.DecompressBlock(blk)
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
		off = blk.End()
	}
}

// parseReferences attempts to parse the full header section from buf.
// needMore is true when buf ends before the header does.
func parseReferences(buf []byte) (refs []types.Reference, needMore bool, err error) {
	if len(buf) >= 4 && !bytes.Equal(buf[:4], types.BAMMagic[:]) {
		return nil, false, fmt.Errorf("stream does not begin with BAM magic: %w", types.ErrInvalidFile)
	}
	if len(buf) < 12 {
		return nil, true, nil
	}
	lText := int(int32(binary.LittleEndian.Uint32(buf[4:8])))
	if lText < 0 {
		return nil, false, fmt.Errorf("negative header text length %d: %w", lText, types.ErrInvalidFile)
	}
	off := 8 + lText
	if off+4 > len(buf) {
		return nil, true, nil
	}
	nRef := int(int32(binary.LittleEndian.Uint32(buf[off : off+4])))
	if nRef < 0 {
		return nil, false, fmt.Errorf("negative reference count %d: %w", nRef, types.ErrInvalidFile)
	}
	off += 4

	// nRef is unvalidated input; cap the preallocation and let append
	// grow as entries actually parse.
	capHint := nRef
	if capHint > 1<<16 {
		capHint = 1 << 16
	}
	refs = make([]types.Reference, 0, capHint)
	for i := 0; i < nRef; i++ {
		if off+4 > len(buf) {
			return nil, true, nil
		}
		lName := int(int32(binary.LittleEndian.Uint32(buf[off : off+4])))
		if lName <= 0 {
			return nil, false, fmt.Errorf("reference %d: invalid name length %d: %w", i, lName, types.ErrInvalidFile)
		}
		off += 4
		if off+lName+4 > len(buf) {
			return nil, true, nil
		}
		// Sequence names are NUL terminated.
		name := string(bytes.TrimRight(buf[off:off+lName], "\x00"))
		off += lName
		length := int32(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
		refs = append(refs, types.Reference{Name: name, Length: length})
	}
	return refs, false, nil
}
