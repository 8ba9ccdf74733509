// Package device provides file access and configuration for the tail
// pipeline.
package device

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// AlignmentFile provides positioned read access to one BAM file. Handles
// are scoped per resolution: opened, read and closed by the caller on
// every exit path.
type AlignmentFile struct {
	file *os.File
	size int64
}

// Open opens a BAM file for reading and records its size.
func Open(path string) (*AlignmentFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alignment file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat alignment file: %w", err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory: %w", path, types.ErrInvalidFile)
	}

	return &AlignmentFile{file: file, size: stat.Size()}, nil
}

// ReadAt implements io.ReaderAt over the alignment file.
func (f *AlignmentFile) ReadAt(p []byte, off int64) (n int, err error) {
	return f.file.ReadAt(p, off)
}

// Size returns the file size captured at open time.
func (f *AlignmentFile) Size() int64 {
	return f.size
}

// Close closes the underlying file.
func (f *AlignmentFile) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}
