// Package livefeed fans out Airtime Tracker records to connected clients
// over QUIC, so an external scheduler can watch EIT timing updates live
// instead of tailing a file. It implements airtime.Emitter directly.
package livefeed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/nanbu-tv/tsgate/certs"
)

// alpn is the ALPN protocol identifier clients must offer to connect.
const alpn = "tsgate-livefeed"

// Server accepts QUIC connections and pushes one unidirectional stream of
// newline-delimited JSON records to each.
type Server struct {
	log *slog.Logger
	ln  *quic.Listener

	mu      sync.Mutex
	streams map[*quic.Conn]*quic.SendStream
}

// NewServer starts listening for QUIC connections on addr using a
// self-signed certificate (mirroring cmd/prism/main.go's cert-then-listen
// sequence). Call Serve to start accepting, and Emit to publish.
func NewServer(addr string, cert *certs.CertInfo, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert.TLSCert},
		NextProtos:   []string{alpn},
	}

	ln, err := quic.ListenAddr(addr, tlsConf, &quic.Config{})
	if err != nil {
		return nil, err
	}

	return &Server{
		log:     log.With("component", "livefeed", "addr", addr),
		ln:      ln,
		streams: make(map[*quic.Conn]*quic.SendStream),
	}, nil
}

// Serve accepts connections until ctx is canceled, opening one outbound
// stream per connection and registering it for Emit.
func (s *Server) Serve(ctx context.Context) error {
	defer s.ln.Close()
	for {
		conn, err := s.ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn *quic.Conn) {
	stream, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		s.log.Warn("failed to open outbound stream", "error", err)
		conn.CloseWithError(0, "stream open failed")
		return
	}

	s.mu.Lock()
	s.streams[conn] = stream
	s.mu.Unlock()

	s.log.Info("client connected", "remote", conn.RemoteAddr())

	<-conn.Context().Done()

	s.mu.Lock()
	delete(s.streams, conn)
	s.mu.Unlock()
	s.log.Info("client disconnected", "remote", conn.RemoteAddr())
}

// Emit marshals v to compact JSON and broadcasts it, satisfying
// airtime.Emitter so a Tracker can push directly to livefeed clients.
func (s *Server) Emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, stream := range s.streams {
		if _, err := stream.Write(data); err != nil {
			s.log.Debug("dropping unresponsive client", "remote", conn.RemoteAddr(), "error", err)
			delete(s.streams, conn)
		}
	}
	return nil
}

// Close shuts down the listener. Client connections that were already
// accepted are not closed by it.
func (s *Server) Close() error {
	return s.ln.Close()
}
