package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nanbu-tv/tsgate/airtime"
	"github.com/nanbu-tv/tsgate/certs"
	"github.com/nanbu-tv/tsgate/jsonl"
	"github.com/nanbu-tv/tsgate/livefeed"
)

func newTrackCmd() *cobra.Command {
	var (
		sid, eid      uint16
		input, output string
		liveFeedAddr  string
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Emit newline-delimited JSON EIT timing updates for one service/event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cmd.Context(), sid, eid, input, output, liveFeedAddr, slog.Default())
		},
	}

	cmd.Flags().Uint16Var(&sid, "sid", 0, "target service id (required)")
	cmd.Flags().Uint16Var(&eid, "eid", 0, "target event id (required)")
	cmd.Flags().StringVar(&input, "input", "-", "input: file path, \"-\" for stdin, or srt://host:port")
	cmd.Flags().StringVar(&output, "output", "-", "output: file path or \"-\" for stdout, one JSON record per line")
	cmd.Flags().StringVar(&liveFeedAddr, "live-feed-addr", "", "if set, also serve records live over QUIC on this address")

	cmd.MarkFlagRequired("sid")
	cmd.MarkFlagRequired("eid")

	return cmd
}

func runTrack(ctx context.Context, sid, eid uint16, inputSpec, outputSpec, liveFeedAddr string, log *slog.Logger) error {
	src, closer, err := openInput(ctx, inputSpec, log)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	out, err := openOutput(outputSpec)
	if err != nil {
		return err
	}
	defer out.Close()

	fileSink := jsonl.NewSink(out)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, gctx := errgroup.WithContext(runCtx)

	var emit airtime.Emitter = fileSink
	if liveFeedAddr != "" {
		cert, err := certs.Generate(14 * 24 * time.Hour)
		if err != nil {
			return err
		}
		live, err := livefeed.NewServer(liveFeedAddr, cert, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return live.Serve(gctx) })
		emit = multiEmitter{fileSink, live}
	}

	tr := airtime.New(sid, eid, emit, airtime.WithLogger(log))

	g.Go(func() error {
		defer cancelRun() // stop the live-feed server once the packet loop ends
		for {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			pkt, err := src.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}

			ok, err := tr.HandlePacket(pkt)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
	})

	return g.Wait()
}

// multiEmitter fans a record out to every configured emitter, in order.
type multiEmitter []airtime.Emitter

func (m multiEmitter) Emit(v any) error {
	for _, e := range m {
		if err := e.Emit(v); err != nil {
			return err
		}
	}
	return nil
}
