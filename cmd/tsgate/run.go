package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nanbu-tv/tsgate/airtime"
	"github.com/nanbu-tv/tsgate/certs"
	"github.com/nanbu-tv/tsgate/gate"
	"github.com/nanbu-tv/tsgate/internal/psi"
	"github.com/nanbu-tv/tsgate/jsonl"
	"github.com/nanbu-tv/tsgate/livefeed"
	"github.com/nanbu-tv/tsgate/session"
	"github.com/nanbu-tv/tsgate/sink"
)

// newRunCmd wires a Program Filter and an Airtime Tracker onto one shared
// packet source, each tracked as a named session in a session.Registry, so
// one ingest connection drives both the gated output and the live timing
// feed at once.
func newRunCmd() *cobra.Command {
	var (
		sid, eid                         uint16
		clockPCR                         int64
		clockTimeStr                     string
		startMarginMs, endMarginMs       int
		preStreaming                     bool
		input, filterOutput, trackOutput string
		liveFeedAddr                     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a Program Filter and an Airtime Tracker together over one input",
		RunE: func(cmd *cobra.Command, args []string) error {
			clockTime, err := time.Parse(time.RFC3339, clockTimeStr)
			if err != nil {
				return fmt.Errorf("--clock-time: %w", err)
			}

			opt := gate.TargetOption{
				SID:          sid,
				EID:          eid,
				ClockPCR:     clockPCR,
				ClockTime:    clockTime,
				StartMargin:  time.Duration(startMarginMs) * time.Millisecond,
				EndMargin:    time.Duration(endMarginMs) * time.Millisecond,
				PreStreaming: preStreaming,
			}

			return runBoth(cmd.Context(), sid, eid, opt, input, filterOutput, trackOutput, liveFeedAddr, slog.Default())
		},
	}

	cmd.Flags().Uint16Var(&sid, "sid", 0, "target service id (required)")
	cmd.Flags().Uint16Var(&eid, "eid", 0, "target event id (required)")
	cmd.Flags().Int64Var(&clockPCR, "clock-pcr", 0, "PCR value observed at --clock-time")
	cmd.Flags().StringVar(&clockTimeStr, "clock-time", "", "wall-clock instant (RFC3339, JST) at which --clock-pcr was observed (required)")
	cmd.Flags().IntVar(&startMarginMs, "start-margin-ms", 0, "milliseconds subtracted from the event's start time")
	cmd.Flags().IntVar(&endMarginMs, "end-margin-ms", 0, "milliseconds added to the event's end time")
	cmd.Flags().BoolVar(&preStreaming, "pre-streaming", false, "forward PAT packets live during WaitReady instead of buffering")
	cmd.Flags().StringVar(&input, "input", "-", "input: file path, \"-\" for stdin, or srt://host:port")
	cmd.Flags().StringVar(&filterOutput, "filter-output", "-", "gated packet output: file path or \"-\" for stdout")
	cmd.Flags().StringVar(&trackOutput, "track-output", "", "EIT timing ND-JSON output file (required)")
	cmd.Flags().StringVar(&liveFeedAddr, "live-feed-addr", "", "if set, also serve timing records live over QUIC on this address")

	cmd.MarkFlagRequired("sid")
	cmd.MarkFlagRequired("eid")
	cmd.MarkFlagRequired("clock-time")
	cmd.MarkFlagRequired("track-output")

	return cmd
}

// pumpHandler is the shared HandlePacket contract gate.Filter and
// airtime.Tracker both satisfy.
type pumpHandler interface {
	HandlePacket(pkt *psi.Packet) (bool, error)
}

// sessionRunner adapts one pump-driven handler into a session.Runner: Run
// blocks until the shared pump loop marks this handler finished, then
// returns whatever error the pump recorded for it.
type sessionRunner struct {
	done chan struct{}
	err  *error
}

func (r *sessionRunner) Run(ctx context.Context) error {
	select {
	case <-r.done:
		return *r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func runBoth(ctx context.Context, sid, eid uint16, opt gate.TargetOption, inputSpec, filterOutSpec, trackOutSpec, liveFeedAddr string, log *slog.Logger) error {
	src, closer, err := openInput(ctx, inputSpec, log)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	filterOut, err := openOutput(filterOutSpec)
	if err != nil {
		return err
	}
	defer filterOut.Close()

	trackOut, err := os.Create(trackOutSpec)
	if err != nil {
		return fmt.Errorf("tsgate: create %s: %w", trackOutSpec, err)
	}
	defer trackOut.Close()

	f := gate.New(opt, gate.WithLogger(log))
	f.Connect(sink.NewWriter(filterOut))
	if err := f.Start(); err != nil {
		return err
	}

	fileSink := jsonl.NewSink(trackOut)
	var emit airtime.Emitter = fileSink

	var live *livefeed.Server
	if liveFeedAddr != "" {
		cert, err := certs.Generate(14 * 24 * time.Hour)
		if err != nil {
			return err
		}
		live, err = livefeed.NewServer(liveFeedAddr, cert, log)
		if err != nil {
			return err
		}
		emit = multiEmitter{fileSink, live}
	}
	tr := airtime.New(sid, eid, emit, airtime.WithLogger(log))

	reg := session.NewRegistry(log)

	filterDone, trackDone := make(chan struct{}), make(chan struct{})
	var filterErr, trackErr error

	filterSess, err := reg.Start(ctx, "filter", &sessionRunner{done: filterDone, err: &filterErr})
	if err != nil {
		return err
	}
	trackSess, err := reg.Start(ctx, "track", &sessionRunner{done: trackDone, err: &trackErr})
	if err != nil {
		return err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var g errgroup.Group
	if live != nil {
		g.Go(func() error { return live.Serve(runCtx) })
	}

	g.Go(func() error {
		defer cancelRun()
		defer close(filterDone)
		defer close(trackDone)

		filterActive, trackActive := true, true
		var handlers [2]struct {
			active *bool
			handle pumpHandler
			errOut *error
		}
		handlers[0] = struct {
			active *bool
			handle pumpHandler
			errOut *error
		}{&filterActive, f, &filterErr}
		handlers[1] = struct {
			active *bool
			handle pumpHandler
			errOut *error
		}{&trackActive, tr, &trackErr}

		for filterActive || trackActive {
			if runCtx.Err() != nil {
				return runCtx.Err()
			}

			pkt, err := src.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					filterErr, trackErr = err, err
				}
				return nil
			}

			for _, h := range handlers {
				if !*h.active {
					continue
				}
				ok, err := h.handle.HandlePacket(pkt)
				if err != nil {
					*h.errOut = err
					*h.active = false
				} else if !ok {
					*h.active = false
				}
			}
		}
		return nil
	})

	runErr := g.Wait()

	if err := f.End(); err != nil && runErr == nil {
		runErr = err
	}

	filterSess.Wait()
	trackSess.Wait()

	return runErr
}
