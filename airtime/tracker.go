// Package airtime implements the Airtime Tracker: a co-located observer
// that emits one newline-delimited JSON record per qualifying EIT update
// for a target service/event, so an external scheduler can react to
// broadcast time drift (spec.md §4.4).
package airtime

import (
	"log/slog"

	"github.com/nanbu-tv/tsgate/internal/demux"
	"github.com/nanbu-tv/tsgate/internal/eitrule"
	"github.com/nanbu-tv/tsgate/internal/psi"
)

const eitPID uint16 = 0x0012

// Emitter receives one Record per matching EIT event. jsonl.Sink satisfies
// this directly.
type Emitter interface {
	Emit(v any) error
}

// Tracker observes the same packet sequence as a gate.Filter would, but
// only ever emits JSON records — it never forwards packets.
type Tracker struct {
	log   *slog.Logger
	sid   uint16
	eid   uint16
	emit  Emitter
	demux *demux.Demux
	done  bool
}

// Option configures a Tracker at construction time.
type Option func(*Tracker)

// WithLogger overrides the component logger (defaults to slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// New creates an Airtime Tracker for the given service/event, emitting
// records to emit. It subscribes the internal demultiplexer to the EIT PID
// (0x0012) only — the tracker never needs PAT/PMT.
func New(sid, eid uint16, emit Emitter, opts ...Option) *Tracker {
	t := &Tracker{
		sid:  sid,
		eid:  eid,
		emit: emit,
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	t.log = t.log.With("component", "airtime", "sid", sid, "eid", eid)

	t.demux = demux.New(demux.WithLogger(t.log))
	t.demux.SetHandler(t.handleTable)
	t.demux.Subscribe(eitPID)

	return t
}

// HandlePacket feeds one packet to the tracker. It returns false once the
// target event has disappeared from the schedule (spec.md §4.4); the
// caller must stop calling HandlePacket at that point.
func (t *Tracker) HandlePacket(pkt *psi.Packet) (bool, error) {
	if t.done {
		return false, nil
	}
	t.demux.Feed(pkt)
	return !t.done, nil
}

func (t *Tracker) handleTable(_ uint16, table any) {
	eit, ok := table.(*psi.EIT)
	if !ok {
		return
	}
	t.handleEIT(eit)
}

func (t *Tracker) handleEIT(eit *psi.EIT) {
	if eit.ServiceID != t.sid {
		return
	}

	d := eitrule.Evaluate(eit.Events, t.eid)
	switch d.Kind {
	case eitrule.NoEvents, eitrule.Missing:
		t.done = true
	case eitrule.Match:
		rec := Record{
			NID:       eit.OriginalNetworkID,
			TSID:      eit.TransportStreamID,
			SID:       eit.ServiceID,
			EID:       d.Event.EventID,
			StartTime: d.Event.StartTime.UnixMilli(),
			Duration:  d.Event.Duration.Milliseconds(),
		}
		if err := t.emit.Emit(rec); err != nil {
			t.log.Warn("emit failed", "error", err)
		}
	}
}
