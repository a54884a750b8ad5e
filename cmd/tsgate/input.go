package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nanbu-tv/tsgate/ingest"
	srtingest "github.com/nanbu-tv/tsgate/ingest/srt"
)

// openInput resolves --input into a packet source. "srt://host:port" dials
// a remote SRT listener; anything else is treated as a file path ("-" means
// stdin).
func openInput(ctx context.Context, spec string, log *slog.Logger) (ingest.PacketSource, io.Closer, error) {
	if addr, ok := strings.CutPrefix(spec, "srt://"); ok {
		src, err := srtingest.Dial(ctx, addr, log)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	}

	if spec == "-" {
		return ingest.NewReaderSource(os.Stdin), nil, nil
	}

	src, err := ingest.OpenFile(spec)
	if err != nil {
		return nil, nil, err
	}
	return src, src, nil
}

// openOutput resolves --output into a raw packet writer. "-" means stdout.
func openOutput(spec string) (io.WriteCloser, error) {
	if spec == "-" || spec == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(spec)
	if err != nil {
		return nil, fmt.Errorf("tsgate: create %s: %w", spec, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
