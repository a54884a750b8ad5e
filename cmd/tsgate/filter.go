package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanbu-tv/tsgate/gate"
	"github.com/nanbu-tv/tsgate/sink"
)

func newFilterCmd() *cobra.Command {
	var (
		sid, eid                   uint16
		clockPCR                   int64
		clockTimeStr               string
		startMarginMs, endMarginMs int
		preStreaming               bool
		input, output              string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Gate an MPEG-TS stream to one service/event's airtime",
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

			return runFilter(cmd.Context(), opt, input, output, slog.Default())
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
	cmd.Flags().StringVar(&output, "output", "-", "output: file path or \"-\" for stdout")

	cmd.MarkFlagRequired("sid")
	cmd.MarkFlagRequired("eid")
	cmd.MarkFlagRequired("clock-time")

	return cmd
}

func runFilter(ctx context.Context, opt gate.TargetOption, inputSpec, outputSpec string, log *slog.Logger) error {
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

	f := gate.New(opt, gate.WithLogger(log))
	f.Connect(sink.NewWriter(out))

	if err := f.Start(); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pkt, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		ok, err := f.HandlePacket(pkt)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}

	return f.End()
}
