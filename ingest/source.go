// Package ingest provides packet sources: collaborators that hand fixed-size
// MPEG-TS packets to a gating session in arrival order. The core (gate,
// airtime) depends only on the PacketSource contract; this package supplies
// the concrete file/reader implementation, and ingest/srt adapts an SRT
// connection to the same contract.
package ingest

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nanbu-tv/tsgate/internal/psi"
)

// PacketSize is the fixed size of an MPEG-TS packet.
const PacketSize = psi.PacketSize

// PacketSource is a finite, non-restartable sequence of parsed TS packets.
// Next returns io.EOF once the source is exhausted.
type PacketSource interface {
	Next() (*psi.Packet, error)
}

// ReaderSource reads fixed-size TS packets from an io.Reader until it is
// exhausted or produces a short read.
type ReaderSource struct {
	r *bufio.Reader
}

// NewReaderSource wraps r as a PacketSource.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReaderSize(r, PacketSize*64)}
}

// Next reads and parses the next packet. It returns io.EOF when the
// underlying reader is exhausted exactly at a packet boundary; a partial
// trailing packet yields an error that wraps io.EOF. Any other read error is
// returned as is.
func (s *ReaderSource) Next() (*psi.Packet, error) {
	buf := make([]byte, PacketSize)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("ingest: truncated trailing packet: %w", io.EOF)
		}
		return nil, err
	}
	return psi.ParsePacket(buf)
}
