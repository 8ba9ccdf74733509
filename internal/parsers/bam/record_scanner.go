// Package bam parses the decompressed BAM byte stream: the header section
// with its reference dictionary, and the variable-length alignment
// records that follow it.
package bam

import (
	"bytes"
	"encoding/binary"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// RecordScanner reconstructs alignment records from decompressed BGZF
// chunks supplied newest-first. The record stream has no backward framing
// marker, so the scanner keeps a forward walk honest: after every
// PushFront it replays record-by-record from the start of the accumulated
// buffer, and only a walk that lands cleanly on the buffer end confirms
// the final record boundary.
type RecordScanner struct {
	buf []byte
}

// NewRecordScanner creates an empty scanner.
func NewRecordScanner() *RecordScanner {
	return &RecordScanner{}
}

// PushFront prepends a chunk that precedes everything accumulated so far
// in file order.
func (s *RecordScanner) PushFront(chunk []byte) {
	joined := make([]byte, 0, len(chunk)+len(s.buf))
	joined = append(joined, chunk...)
	joined = append(joined, s.buf...)
	s.buf = joined
}

// Len returns the number of accumulated bytes.
func (s *RecordScanner) Len() int {
	return len(s.buf)
}

// Anchored reports whether the buffer starts at the true beginning of the
// decompressed stream, recognized by the BAM magic. An anchored walk
// starts from a known-good boundary, so a short landing there means a
// truncated trailing record rather than a wrong start guess.
func (s *RecordScanner) Anchored() bool {
	return len(s.buf) >= 4 && bytes.Equal(s.buf[:4], types.BAMMagic[:])
}

// Scan walks the buffer forward record by record and reports the last
// complete record, the number of complete records, and how the walk ended
// relative to the buffer end. When the buffer is anchored the header
// section is skipped before the walk begins.
func (s *RecordScanner) Scan() (types.AlignmentRecord, int, types.Landing) {
	start := 0
	if s.Anchored() {
		hdrLen, ok := headerLen(s.buf)
		if !ok {
			// The header itself is cut off. With the whole stream in
			// the buffer no record boundary can ever resolve.
			return types.AlignmentRecord{}, 0, types.LandingInvalid
		}
		start = hdrLen
	}

	var last types.AlignmentRecord
	n := 0
	off := start
	for off < len(s.buf) {
		if len(s.buf)-off < types.RecordSizeWordLen {
			return last, n, types.LandingShort
		}
		size := binary.LittleEndian.Uint32(s.buf[off : off+4])
		if size < types.RecordFixedSize {
			return last, n, types.LandingInvalid
		}
		if off+types.RecordSizeWordLen+int(size) > len(s.buf) {
			return last, n, types.LandingShort
		}
		last = types.AlignmentRecord{
			RefID: int32(binary.LittleEndian.Uint32(s.buf[off+4 : off+8])),
			Pos:   int32(binary.LittleEndian.Uint32(s.buf[off+8 : off+12])),
			Size:  size,
		}
		n++
		off += last.ByteLen()
	}
	return last, n, types.LandingExact
}

// headerLen returns the byte length of the BAM header section at the
// start of buf, or false when the header is incomplete or malformed.
func headerLen(buf []byte) (int, bool) {
	if len(buf) < 12 {
		return 0, false
	}
	lText := int(int32(binary.LittleEndian.Uint32(buf[4:8])))
	if lText < 0 {
		return 0, false
	}
	off := 8 + lText
	if off+4 > len(buf) {
		return 0, false
	}
	nRef := int(int32(binary.LittleEndian.Uint32(buf[off : off+4])))
	if nRef < 0 {
		return 0, false
	}
	off += 4
	for i := 0; i < nRef; i++ {
		if off+4 > len(buf) {
			return 0, false
		}
		lName := int(int32(binary.LittleEndian.Uint32(buf[off : off+4])))
		if lName < 0 {
			return 0, false
		}
		// Name bytes plus the trailing l_ref word.
		off += 4 + lName + 4
		if off > len(buf) {
			return 0, false
		}
	}
	return off, true
}
