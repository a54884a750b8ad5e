// Package srt adapts SRT connections (github.com/zsiec/srtgo) into
// ingest.PacketSource, so a gating session's input can be a live SRT feed
// instead of a file.
package srt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	srtgo "github.com/zsiec/srtgo"

	"github.com/nanbu-tv/tsgate/ingest"
)

// srtLatencyNs is the SRT latency setting in nanoseconds (120ms), carried
// over from the teacher's default.
const srtLatencyNs = 120_000_000

// Source adapts one SRT connection into an ingest.PacketSource.
type Source struct {
	*ingest.ReaderSource
	conn *srtgo.Conn
}

// Close closes the underlying SRT connection.
func (s *Source) Close() error {
	return s.conn.Close()
}

// Listen opens an SRT listener on addr and blocks until exactly one publish
// connection arrives (or ctx is done), returning it as a PacketSource. A
// connection with no StreamID is rejected, matching the teacher's
// accept/reject policy.
func Listen(ctx context.Context, addr string, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "srt-ingest", "addr", addr)

	cfg := srtgo.DefaultConfig()
	cfg.Latency = srtLatencyNs

	l, err := srtgo.Listen(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("tsgate: srt listen on %s: %w", addr, err)
	}

	l.SetAcceptRejectFunc(func(req srtgo.ConnRequest) srtgo.RejectReason {
		if req.StreamID == "" {
			return srtgo.RejPeer
		}
		return 0
	})

	log.Info("listening for one publish connection")

	type acceptResult struct {
		conn *srtgo.Conn
		err  error
	}
	ch := make(chan acceptResult, 1)
	go func() {
		conn, err := l.Accept()
		ch <- acceptResult{conn, err}
	}()

	select {
	case res := <-ch:
		l.Close()
		if res.err != nil {
			return nil, fmt.Errorf("tsgate: srt accept on %s: %w", addr, res.err)
		}
		log.Info("accepted publish connection")
		return &Source{ReaderSource: ingest.NewReaderSource(res.conn), conn: res.conn}, nil
	case <-ctx.Done():
		l.Close()
		return nil, ctx.Err()
	}
}

// Dial connects to a remote SRT listener at address, returning the
// connection as a PacketSource once established.
func Dial(ctx context.Context, address string, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "srt-ingest", "address", address)

	cfg := srtgo.DefaultConfig()
	cfg.Latency = srtLatencyNs

	type dialResult struct {
		conn *srtgo.Conn
		err  error
	}
	ch := make(chan dialResult, 1)
	go func() {
		conn, err := srtgo.Dial(address, cfg)
		ch <- dialResult{conn, err}
	}()

	dialTimeout := 10 * time.Second
	timer := time.NewTimer(dialTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("tsgate: srt dial %s: %w", address, res.err)
		}
		log.Info("connected")
		return &Source{ReaderSource: ingest.NewReaderSource(res.conn), conn: res.conn}, nil
	case <-timer.C:
		go func() {
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, fmt.Errorf("tsgate: srt dial %s timed out after %s", address, dialTimeout)
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
