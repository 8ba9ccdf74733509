package bgzf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/deploymenttheory/go-bamtail/internal/bamtest"
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

func testFile(payloads ...[]byte) []byte {
	return bamtest.File(payloads...)
}

func TestLastBlockBeforeFindsFinalBlock(t *testing.T) {
	first := []byte("header payload")
	second := bytes.Repeat([]byte{0x42}, 500)
	file := testFile(first, second)
	firstLen := len(bamtest.Block(first))

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	blk, err := locator.LastBlockBefore(int64(len(file) - len(types.EOFMarker)))
	if err != nil {
		t.Fatalf("LastBlockBefore failed: %v", err)
	}

	if blk.Offset != int64(firstLen) {
		t.Errorf("expected offset %d, got %d", firstLen, blk.Offset)
	}
	if blk.UncompressedSize != len(second) {
		t.Errorf("expected uncompressed size %d, got %d", len(second), blk.UncompressedSize)
	}
}

func TestLastBlockBeforeWalksEarlierBlocks(t *testing.T) {
	first := []byte("first")
	second := []byte("second")
	file := testFile(first, second)
	firstLen := len(bamtest.Block(first))

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	blk, err := locator.LastBlockBefore(int64(firstLen))
	if err != nil {
		t.Fatalf("LastBlockBefore failed: %v", err)
	}
	if blk.Offset != 0 {
		t.Errorf("expected offset 0, got %d", blk.Offset)
	}
	if blk.UncompressedSize != len(first) {
		t.Errorf("expected uncompressed size %d, got %d", len(first), blk.UncompressedSize)
	}
}

func TestLastBlockBeforeSkipsTruncatedTrailingBlock(t *testing.T) {
	complete := bamtest.Block([]byte("complete block"))
	// Poorly compressible payload so the truncated block keeps its header.
	noisy := make([]byte, 2000)
	state := uint32(1)
	for i := range noisy {
		state = state*1664525 + 1013904223
		noisy[i] = byte(state >> 24)
	}
	partial := bamtest.Block(noisy)
	file := append(append([]byte{}, complete...), partial[:len(partial)-25]...)

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	blk, err := locator.LastBlockBefore(int64(len(file)))
	if err != nil {
		t.Fatalf("LastBlockBefore failed: %v", err)
	}
	if blk.Offset != 0 {
		t.Errorf("expected the last complete block at offset 0, got %d", blk.Offset)
	}
}

func TestLastBlockBeforeRejectsFalseMagic(t *testing.T) {
	// A fake header whose declared size lands in the middle of garbage
	// must be rejected by cross-validation, falling back to the real
	// block whose end coincides with the fake's magic bytes.
	real := bamtest.Block([]byte("real block"))
	fake := make([]byte, 50)
	copy(fake, []byte{
		types.BGZFMagic0, types.BGZFMagic1, types.BGZFMagic2, types.BGZFMagic3,
		0, 0, 0, 0,
		0, 0xff,
		6, 0,
		'B', 'C', 2, 0, 39, 0, // claims a 40-byte block
	})
	file := append(append([]byte{}, real...), fake...)

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	blk, err := locator.LastBlockBefore(int64(len(file)))
	if err != nil {
		t.Fatalf("LastBlockBefore failed: %v", err)
	}
	if blk.Offset != 0 {
		t.Errorf("expected the real block at offset 0, got %d", blk.Offset)
	}
}

func TestLastBlockBeforePartialTrailingMagic(t *testing.T) {
	// A writer caught after emitting only part of the next block's magic
	// must not cost us the last complete block.
	complete := bamtest.Block([]byte("records payload"))
	for _, trailing := range [][]byte{
		{types.BGZFMagic0},
		{types.BGZFMagic0, types.BGZFMagic1},
		{types.BGZFMagic0, types.BGZFMagic1, types.BGZFMagic2},
	} {
		file := append(append([]byte{}, complete...), trailing...)

		locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
		blk, err := locator.LastBlockBefore(int64(len(file)))
		if err != nil {
			t.Fatalf("%d trailing bytes: LastBlockBefore failed: %v", len(trailing), err)
		}
		if blk.Offset != 0 {
			t.Errorf("%d trailing bytes: expected offset 0, got %d", len(trailing), blk.Offset)
		}
	}
}

func TestLastBlockBeforeRejectsTrailingGarbageBytes(t *testing.T) {
	// 1-3 trailing bytes that are not a magic prefix stay ambiguous; the
	// candidate before them must not validate.
	complete := bamtest.Block([]byte("records payload"))
	file := append(append([]byte{}, complete...), 0x00, 0x01)

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	_, err := locator.LastBlockBefore(int64(len(file)))
	if !errors.Is(err, types.ErrNoBlockBoundary) {
		t.Errorf("expected ErrNoBlockBoundary, got %v", err)
	}
}

func TestLastBlockBeforeGarbageFile(t *testing.T) {
	file := bytes.Repeat([]byte{0xAA}, 100*1024)

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	_, err := locator.LastBlockBefore(int64(len(file)))
	if !errors.Is(err, types.ErrNoBlockBoundary) {
		t.Errorf("expected ErrNoBlockBoundary, got %v", err)
	}
}

func TestLastBlockBeforeBudgetExhausted(t *testing.T) {
	blkBytes := bamtest.Block([]byte("payload"))
	file := append(append([]byte{}, blkBytes...), bytes.Repeat([]byte{0xAA}, 512*1024)...)

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 128*1024)
	_, err := locator.LastBlockBefore(int64(len(file)))
	if !errors.Is(err, types.ErrNoBlockBoundary) {
		t.Errorf("expected ErrNoBlockBoundary, got %v", err)
	}
}

func TestLastBlockBeforeTinyFile(t *testing.T) {
	file := []byte{1, 2, 3, 4, 5}

	locator := NewBlockLocator(bytes.NewReader(file), int64(len(file)), 256*1024)
	_, err := locator.LastBlockBefore(int64(len(file)))
	if !errors.Is(err, types.ErrInvalidFile) {
		t.Errorf("expected ErrInvalidFile, got %v", err)
	}
}

func TestHasEOFMarker(t *testing.T) {
	withMarker := testFile([]byte("payload"))
	ok, err := HasEOFMarker(bytes.NewReader(withMarker), int64(len(withMarker)))
	if err != nil {
		t.Fatalf("HasEOFMarker failed: %v", err)
	}
	if !ok {
		t.Error("expected EOF marker to be detected")
	}

	withoutMarker := bamtest.Block([]byte("payload"))
	ok, err = HasEOFMarker(bytes.NewReader(withoutMarker), int64(len(withoutMarker)))
	if err != nil {
		t.Fatalf("HasEOFMarker failed: %v", err)
	}
	if ok {
		t.Error("expected no EOF marker")
	}

	ok, err = HasEOFMarker(bytes.NewReader(nil), 0)
	if err != nil || ok {
		t.Errorf("expected no marker on empty file, got ok=%v err=%v", ok, err)
	}
}

func TestBlockAtParsesDescriptor(t *testing.T) {
	payload := []byte("descriptor payload")
	blkBytes := bamtest.Block(payload)

	blk, err := BlockAt(bytes.NewReader(blkBytes), 0, int64(len(blkBytes)))
	if err != nil {
		t.Fatalf("BlockAt failed: %v", err)
	}
	if blk.CompressedSize != len(blkBytes) {
		t.Errorf("expected compressed size %d, got %d", len(blkBytes), blk.CompressedSize)
	}
	if blk.UncompressedSize != len(payload) {
		t.Errorf("expected uncompressed size %d, got %d", len(payload), blk.UncompressedSize)
	}
	if !blk.Validate() {
		t.Error("expected descriptor to validate")
	}
}

func TestBlockAtRejectsOversizedClaim(t *testing.T) {
	blkBytes := bamtest.Block([]byte("payload"))
	// Truncate so the declared size runs past end-of-file.
	truncated := blkBytes[:len(blkBytes)-4]

	_, err := BlockAt(bytes.NewReader(truncated), 0, int64(len(truncated)))
	if !errors.Is(err, types.ErrInvalidFile) {
		t.Errorf("expected ErrInvalidFile, got %v", err)
	}
}

func BenchmarkLastBlockBefore(b *testing.B) {
	payload := bytes.Repeat([]byte{0x42}, 60000)
	file := testFile(payload, payload, payload)
	r := bytes.NewReader(file)
	locator := NewBlockLocator(r, int64(len(file)), 256*1024)
	limit := int64(len(file) - len(types.EOFMarker))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := locator.LastBlockBefore(limit); err != nil {
			b.Fatal(err)
		}
	}
}
