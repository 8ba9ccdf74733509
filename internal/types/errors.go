package types

import "errors"

// Sentinel errors for the tail-resolution pipeline. Callers classify
// per-file failures with errors.Is; call sites wrap these with offset and
// path context.
var (
	// ErrInvalidFile marks a file too short to hold a BGZF block or
	// missing mandatory structure such as the BAM magic.
	ErrInvalidFile = errors.New("file too short or missing mandatory structure")

	// ErrNoBlockBoundary marks a backward scan that exhausted its search
	// budget without finding a valid block start.
	ErrNoBlockBoundary = errors.New("no valid BGZF block boundary within search budget")

	// ErrBlockIntegrity marks a block whose decompressed payload does not
	// match its declared size or CRC32.
	ErrBlockIntegrity = errors.New("BGZF block size or checksum mismatch")

	// ErrRecordStream marks a record stream whose framing never resolved
	// to a clean boundary, typically a file caught mid-write below one
	// record's granularity.
	ErrRecordStream = errors.New("alignment record framing never resolved")
)
