package types

// BAMMagic is the first four bytes of the decompressed stream of a BAM
// file, preceding the plain-text header.
var BAMMagic = [4]byte{'B', 'A', 'M', 0x01}

const (
	// UnmappedRefID is the reference id sentinel carried by records that
	// are not mapped to any reference sequence.
	UnmappedRefID = -1

	// RecordSizeWordLen is the length of the block_size word that opens
	// every alignment record. block_size excludes itself.
	RecordSizeWordLen = 4

	// RecordFixedSize is the number of bytes of fixed fields that follow
	// the block_size word (refID through tlen). No valid record declares
	// a block_size smaller than this.
	RecordFixedSize = 32
)

// AlignmentRecord is the partial view of one BAM alignment record needed
// to report a tail position: the fields that sit at fixed offsets in the
// record header.
type AlignmentRecord struct {
	// Reference index into the catalog, or UnmappedRefID.
	RefID int32
	// 0-based leftmost mapping position. Meaningful only when mapped.
	Pos int32
	// Declared record length excluding the block_size word itself.
	Size uint32
}

// ByteLen returns the total number of stream bytes the record occupies.
func (r AlignmentRecord) ByteLen() int {
	return RecordSizeWordLen + int(r.Size)
}

// IsMapped reports whether the record is placed against a reference.
func (r AlignmentRecord) IsMapped() bool {
	return r.RefID != UnmappedRefID
}

// Reference is one entry of the reference catalog built from the BAM
// header: a sequence name and its declared length.
type Reference struct {
	Name   string `json:"name"`
	Length int32  `json:"length"`
}

// Landing describes how a forward record walk ended relative to the end
// of the accumulated buffer.
type Landing int

const (
	// LandingExact means the walk consumed the buffer exactly, landing on
	// its final byte boundary.
	LandingExact Landing = iota
	// LandingShort means the walk ran out of bytes inside a record.
	LandingShort
	// LandingInvalid means the walk hit a record length that cannot be
	// valid for any BAM record.
	LandingInvalid
)
