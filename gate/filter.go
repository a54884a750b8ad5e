// Package gate implements the Program Filter: an MPEG-TS packet pump that
// gates a stream to the airtime of one service/event pair, using PCR
// arithmetic and EIT timing as the authoritative signals (spec.md §4.3).
package gate

import (
	"log/slog"

	"github.com/nanbu-tv/tsgate/internal/demux"
	"github.com/nanbu-tv/tsgate/internal/eitrule"
	"github.com/nanbu-tv/tsgate/internal/psi"
	"github.com/nanbu-tv/tsgate/pcr"
	"github.com/nanbu-tv/tsgate/sink"
)

const (
	patPID uint16 = 0x0000
	eitPID uint16 = 0x0012
)

// Filter is the Program Filter gating state machine. It is not safe for
// concurrent use: HandlePacket is meant to be driven by a single packet
// source, synchronously, exactly as spec.md §5 describes.
type Filter struct {
	log *slog.Logger
	opt TargetOption

	demux *demux.Demux
	sink  sink.PacketSink

	state runState
	stop  bool

	pmtPID      *uint16
	pcrPID      *uint16
	pcrPIDReady bool

	startPCR      int64
	endPCR        int64
	pcrRangeReady bool

	lastPATPackets []*psi.Packet
	lastPMTPackets []*psi.Packet
}

// WithLogger overrides the component logger (defaults to slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) { f.log = l }
}

// New creates a Program Filter for the given target option. It subscribes
// the internal demultiplexer to the PAT PID (0x0000) and the EIT PID
// (0x0012), per spec.md §4.3's "initial subscriptions".
func New(opt TargetOption, opts ...Option) *Filter {
	f := &Filter{
		opt: opt,
		log: slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	f.log = f.log.With("component", "gate", "sid", opt.SID, "eid", opt.EID)

	f.demux = demux.New(demux.WithLogger(f.log))
	f.demux.SetHandler(f.handleTable)
	f.demux.Subscribe(patPID)
	f.demux.Subscribe(eitPID)

	return f
}

// Connect attaches the downstream packet sink. It must be called exactly
// once, before Start.
func (f *Filter) Connect(s sink.PacketSink) {
	f.sink = s
}

// Start propagates start to the connected sink.
func (f *Filter) Start() error {
	if f.sink == nil {
		return ErrNoSink
	}
	return f.sink.Start()
}

// End propagates end to the connected sink.
func (f *Filter) End() error {
	if f.sink == nil {
		return ErrNoSink
	}
	return f.sink.End()
}

// HandlePacket feeds one packet through the filter. It feeds the packet to
// the section demultiplexer first, so any PAT/PMT/EIT effect caused by this
// packet is visible to the gating decision that follows (spec.md §5's
// ordering invariant), then dispatches on state. A false return is terminal:
// the caller must stop invoking HandlePacket.
func (f *Filter) HandlePacket(pkt *psi.Packet) (bool, error) {
	if f.sink == nil {
		return false, ErrNoSink
	}

	f.demux.Feed(pkt)

	if f.state == streaming {
		return f.handleStreaming(pkt)
	}
	return f.handleWaitReady(pkt)
}

func (f *Filter) handleWaitReady(pkt *psi.Packet) (bool, error) {
	if f.stop {
		return false, nil
	}

	switch {
	case pkt.Header.PID == patPID:
		if f.opt.PreStreaming {
			return f.forward(pkt)
		}
		bufferPacket(&f.lastPATPackets, pkt)

	case f.pmtPID != nil && pkt.Header.PID == *f.pmtPID:
		bufferPacket(&f.lastPMTPackets, pkt)
	}
	// Any other PID (in particular the PCR PID, which is ordinarily
	// distinct from both) takes no buffering action here and falls
	// through to the PCR gating check below.

	if !f.pcrPIDReady || !f.pcrRangeReady {
		return true, nil
	}
	if f.pcrPID == nil || pkt.Header.PID != *f.pcrPID {
		return true, nil
	}
	if pkt.PCR == nil {
		f.log.Debug("PCR PID packet without PCR value, ignoring", "pid", pkt.Header.PID)
		return true, nil
	}

	pcrVal := *pkt.PCR
	if pcr.Compare(pcrVal, f.endPCR) >= 0 {
		return false, nil
	}
	if pcr.Compare(pcrVal, f.startPCR) < 0 {
		return true, nil
	}

	// The window has been entered: flush buffered PAT/PMT, transition to
	// Streaming, then forward the triggering PCR packet itself.
	if !f.opt.PreStreaming {
		assertf(len(f.lastPATPackets) > 0, "entering streaming window with no buffered PAT packets")
		if ok, err := f.flush(&f.lastPATPackets); !ok || err != nil {
			return ok, err
		}
	}
	if ok, err := f.flush(&f.lastPMTPackets); !ok || err != nil {
		return ok, err
	}

	f.state = streaming
	return f.forward(pkt)
}

func (f *Filter) handleStreaming(pkt *psi.Packet) (bool, error) {
	if f.stop {
		return false, nil
	}

	if f.pcrPID != nil && pkt.Header.PID == *f.pcrPID {
		if pkt.PCR == nil {
			f.log.Debug("PCR PID packet without PCR value, forwarding", "pid", pkt.Header.PID)
			return f.forward(pkt)
		}
		if pcr.Compare(*pkt.PCR, f.endPCR) >= 0 {
			return false, nil
		}
	}

	return f.forward(pkt)
}

func (f *Filter) forward(pkt *psi.Packet) (bool, error) {
	return f.sink.HandlePacket(pkt)
}

// flush forwards every packet buffered in *buf, in order, clearing it
// afterward regardless of outcome.
func (f *Filter) flush(buf *[]*psi.Packet) (bool, error) {
	packets := *buf
	*buf = nil
	for _, p := range packets {
		ok, err := f.forward(p)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// bufferPacket appends pkt to *buf, clearing the buffer first if pkt starts
// a new PSI section (spec.md §4.3 WaitReady step 2).
func bufferPacket(buf *[]*psi.Packet, pkt *psi.Packet) {
	if pkt.Header.PayloadUnitStartIndicator {
		*buf = nil
	}
	*buf = append(*buf, pkt)
}

func (f *Filter) handleTable(sourcePID uint16, table any) {
	switch t := table.(type) {
	case *psi.PAT:
		f.handlePAT(sourcePID, t)
	case *psi.PMT:
		f.handlePMT(t)
	case *psi.EIT:
		f.handleEIT(t)
	}
}

func (f *Filter) handlePAT(sourcePID uint16, pat *psi.PAT) {
	if sourcePID != patPID {
		f.log.Warn("PAT on unexpected PID, ignoring", "pid", sourcePID)
		return
	}
	if pat.TransportStreamID == 0 {
		f.log.Warn("PAT with ts_id=0, ignoring")
		return
	}

	newPMTPID, ok := pat.PMTPID[f.opt.SID]
	assertf(ok, "target sid %d missing from PAT", f.opt.SID)

	if f.pmtPID != nil && *f.pmtPID != newPMTPID {
		f.demux.Unsubscribe(*f.pmtPID)
	}
	if f.pmtPID == nil || *f.pmtPID != newPMTPID {
		f.demux.Subscribe(newPMTPID)
	}
	pid := newPMTPID
	f.pmtPID = &pid
}

func (f *Filter) handlePMT(pmt *psi.PMT) {
	if pmt.ServiceID != f.opt.SID {
		return
	}
	pcrPID := pmt.PCRPID
	f.pcrPID = &pcrPID
	f.pcrPIDReady = true
}

func (f *Filter) handleEIT(eit *psi.EIT) {
	if eit.ServiceID != f.opt.SID {
		return
	}

	d := eitrule.Evaluate(eit.Events, f.opt.EID)
	switch d.Kind {
	case eitrule.NoEvents:
		f.stop = true
	case eitrule.Match:
		f.updatePCRRange(d.Event)
	case eitrule.Missing:
		if f.state != streaming {
			f.stop = true
		}
	}
}

// updatePCRRange projects the target event's (margin-adjusted) start and
// end wall-clock times onto the PCR timeline and stores the result as the
// current gating window. It may be called again later in the stream's life
// as EITs are revised; subsequent gating decisions use the latest values
// (spec.md §4.3's "rationale").
func (f *Filter) updatePCRRange(event psi.EITEvent) {
	startTime := event.StartTime.Add(-f.opt.StartMargin)
	endTime := event.StartTime.Add(event.Duration).Add(f.opt.EndMargin)

	f.startPCR = pcr.TimeToPCR(startTime, f.opt.ClockTime, f.opt.ClockPCR)
	f.endPCR = pcr.TimeToPCR(endTime, f.opt.ClockTime, f.opt.ClockPCR)
	f.pcrRangeReady = true
}
