// Package bamtest assembles BGZF-framed BAM fixtures for tests: real
// deflate-compressed blocks with patched BSIZE fields, minimal alignment
// records, and header sections with reference dictionaries.
package bamtest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/klauspost/compress/flate"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// Block compresses payload into a single complete BGZF block.
func Block(payload []byte) []byte {
	var deflated bytes.Buffer
	fw, err := flate.NewWriter(&deflated, flate.DefaultCompression)
	if err != nil {
		panic(err)
	}
	if _, err := fw.Write(payload); err != nil {
		panic(err)
	}
	if err := fw.Close(); err != nil {
		panic(err)
	}

	total := types.BGZFHeaderSize + 6 + deflated.Len() + types.BGZFFooterSize
	if total > types.MaxBlockSize {
		panic("bamtest: payload too large for one BGZF block")
	}

	blk := make([]byte, 0, total)
	blk = append(blk,
		types.BGZFMagic0, types.BGZFMagic1, types.BGZFMagic2, types.BGZFMagic3,
		0, 0, 0, 0, // MTIME
		0, 0xff, // XFL, OS
		6, 0, // XLEN
		'B', 'C', 2, 0, byte((total-1)&0xff), byte((total-1)>>8),
	)
	blk = append(blk, deflated.Bytes()...)

	var footer [types.BGZFFooterSize]byte
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(footer[4:8], uint32(len(payload)))
	return append(blk, footer[:]...)
}

// Record encodes a minimal BAM alignment record: the fixed header fields
// plus a NUL-terminated read name, no cigar, sequence or quality data.
func Record(refID, pos int32, readName string) []byte {
	name := append([]byte(readName), 0)
	size := types.RecordFixedSize + len(name)

	nextRef := int32(types.UnmappedRefID)
	nextPos := int32(-1)

	rec := make([]byte, types.RecordSizeWordLen+size)
	binary.LittleEndian.PutUint32(rec[0:4], uint32(size))
	binary.LittleEndian.PutUint32(rec[4:8], uint32(refID))
	binary.LittleEndian.PutUint32(rec[8:12], uint32(pos))
	rec[12] = byte(len(name)) // l_read_name
	rec[13] = 0xff            // mapq
	binary.LittleEndian.PutUint16(rec[14:16], 4680) // bin
	// n_cigar_op, flag and l_seq stay zero.
	binary.LittleEndian.PutUint32(rec[24:28], uint32(nextRef)) // next_refID
	binary.LittleEndian.PutUint32(rec[28:32], uint32(nextPos)) // next_pos
	// tlen stays zero.
	copy(rec[36:], name)
	return rec
}

// Header encodes the BAM header section declaring the given references.
func Header(refs []types.Reference) []byte {
	var buf bytes.Buffer
	buf.Write(types.BAMMagic[:])

	text := "@HD\tVN:1.6\tSO:coordinate\n"
	binary.Write(&buf, binary.LittleEndian, int32(len(text)))
	buf.WriteString(text)

	binary.Write(&buf, binary.LittleEndian, int32(len(refs)))
	for _, ref := range refs {
		name := append([]byte(ref.Name), 0)
		binary.Write(&buf, binary.LittleEndian, int32(len(name)))
		buf.Write(name)
		binary.Write(&buf, binary.LittleEndian, ref.Length)
	}
	return buf.Bytes()
}

// Records concatenates encoded records into one stream segment.
func Records(recs ...[]byte) []byte {
	var buf bytes.Buffer
	for _, rec := range recs {
		buf.Write(rec)
	}
	return buf.Bytes()
}

// File assembles a complete BAM from the given block payloads, one BGZF
// block per payload, terminated by the EOF marker.
func File(payloads ...[]byte) []byte {
	var out bytes.Buffer
	for _, p := range payloads {
		out.Write(Block(p))
	}
	out.Write(types.EOFMarker[:])
	return out.Bytes()
}
