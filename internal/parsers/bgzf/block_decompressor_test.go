package bgzf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/deploymenttheory/go-bamtail/internal/bamtest"
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

func locateOnly(t *testing.T, file []byte) types.CompressedBlock {
	t.Helper()
	blk, err := BlockAt(bytes.NewReader(file), 0, int64(len(file)))
	if err != nil {
		t.Fatalf("BlockAt failed: %v", err)
	}
	return blk
}

func TestDecompressBlockRoundtrip(t *testing.T) {
	payload := []byte("alignment record bytes go here")
	file := bamtest.Block(payload)
	blk := locateOnly(t, file)

	dec := NewBlockDecompressor(bytes.NewReader(file))
	data, err := dec.DecompressBlock(blk)
	if err != nil {
		t.Fatalf("DecompressBlock failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("payload mismatch: got %q, expected %q", data, payload)
	}
}

func TestDecompressBlockEmptyPayload(t *testing.T) {
	file := bamtest.Block(nil)
	blk := locateOnly(t, file)

	dec := NewBlockDecompressor(bytes.NewReader(file))
	data, err := dec.DecompressBlock(blk)
	if err != nil {
		t.Fatalf("DecompressBlock failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(data))
	}
}

func TestDecompressBlockCorruptPayload(t *testing.T) {
	payload := bytes.Repeat([]byte("corrupt me "), 100)
	file := bamtest.Block(payload)
	blk := locateOnly(t, file)

	// Flip a byte inside the deflate stream without touching the header
	// or the footer.
	corrupted := append([]byte{}, file...)
	corrupted[len(corrupted)/2] ^= 0xFF

	dec := NewBlockDecompressor(bytes.NewReader(corrupted))
	_, err := dec.DecompressBlock(blk)
	if !errors.Is(err, types.ErrBlockIntegrity) {
		t.Errorf("expected ErrBlockIntegrity, got %v", err)
	}
}

func TestDecompressBlockISIZEMismatch(t *testing.T) {
	payload := []byte("declared size will lie")
	file := append([]byte{}, bamtest.Block(payload)...)
	binary.LittleEndian.PutUint32(file[len(file)-4:], uint32(len(payload)+1))
	blk := locateOnly(t, file)

	dec := NewBlockDecompressor(bytes.NewReader(file))
	_, err := dec.DecompressBlock(blk)
	if !errors.Is(err, types.ErrBlockIntegrity) {
		t.Errorf("expected ErrBlockIntegrity, got %v", err)
	}
}

func TestDecompressBlockCRCMismatch(t *testing.T) {
	payload := []byte("checksum will lie")
	file := append([]byte{}, bamtest.Block(payload)...)
	binary.LittleEndian.PutUint32(file[len(file)-8:len(file)-4], 0xDEADBEEF)
	blk := locateOnly(t, file)

	dec := NewBlockDecompressor(bytes.NewReader(file))
	_, err := dec.DecompressBlock(blk)
	if !errors.Is(err, types.ErrBlockIntegrity) {
		t.Errorf("expected ErrBlockIntegrity, got %v", err)
	}
}

func TestDecompressBlockInvalidDescriptor(t *testing.T) {
	dec := NewBlockDecompressor(bytes.NewReader(nil))
	_, err := dec.DecompressBlock(types.CompressedBlock{Offset: -1, CompressedSize: 10})
	if !errors.Is(err, types.ErrInvalidFile) {
		t.Errorf("expected ErrInvalidFile, got %v", err)
	}
}

func BenchmarkDecompressBlock(b *testing.B) {
	payload := bytes.Repeat([]byte{0x42}, 60000)
	file := bamtest.Block(payload)
	blk, err := BlockAt(bytes.NewReader(file), 0, int64(len(file)))
	if err != nil {
		b.Fatal(err)
	}
	dec := NewBlockDecompressor(bytes.NewReader(file))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dec.DecompressBlock(blk); err != nil {
			b.Fatal(err)
		}
	}
}
