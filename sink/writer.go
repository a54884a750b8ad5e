package sink

import (
	"bufio"
	"io"

	"github.com/nanbu-tv/tsgate/internal/psi"
)

// Writer forwards each packet's raw bytes to an underlying io.Writer,
// unmodified. It never returns false from HandlePacket on its own; a write
// error is the only way it stops the source.
type Writer struct {
	w       *bufio.Writer
	closer  io.Closer
	started bool
}

// NewWriter wraps w as a PacketSink. If w also implements io.Closer, End
// closes it after flushing.
func NewWriter(w io.Writer) *Writer {
	s := &Writer{w: bufio.NewWriterSize(w, psi.PacketSize*64)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *Writer) Start() error {
	s.started = true
	return nil
}

func (s *Writer) End() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Writer) HandlePacket(pkt *psi.Packet) (bool, error) {
	if _, err := s.w.Write(pkt.Raw); err != nil {
		return false, err
	}
	return true, nil
}
