package ingest

import (
	"fmt"
	"os"
)

// FileSource reads TS packets from a file on disk. It owns the underlying
// file handle; call Close when the source is no longer needed.
type FileSource struct {
	*ReaderSource
	f *os.File
}

// OpenFile opens path and returns a PacketSource reading from it.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	return &FileSource{ReaderSource: NewReaderSource(f), f: f}, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.f.Close()
}
