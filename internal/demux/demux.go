// Package demux adapts the psi package's section parsers into a
// subscribe/feed/dispatch contract: a caller subscribes the PIDs it cares
// about, feeds it packets in arrival order, and gets a callback once per
// completed PSI/SI section on a subscribed PID. Section reassembly (PUSI-
// and continuity-counter-driven buffering, CRC validation) happens inside;
// callers only ever see validated *psi.PAT, *psi.PMT, or *psi.EIT values.
package demux

import (
	"log/slog"

	"github.com/nanbu-tv/tsgate/internal/psi"
)

// TableHandler is invoked once per successfully parsed PSI/SI section on a
// subscribed PID. table is one of *psi.PAT, *psi.PMT, or *psi.EIT.
type TableHandler func(pid uint16, table any)

// Demux reassembles TS packets on subscribed PIDs into PSI/SI sections and
// dispatches parsed tables to a handler.
type Demux struct {
	log        *slog.Logger
	handler    TableHandler
	subscribed map[uint16]bool
	accs       map[uint16]*accumulator
}

// Option configures a Demux at construction time.
type Option func(*Demux)

// WithLogger overrides the component logger (defaults to slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(d *Demux) { d.log = l }
}

// New creates a Demux with no PIDs subscribed and no handler installed.
func New(opts ...Option) *Demux {
	d := &Demux{
		log:        slog.Default(),
		subscribed: make(map[uint16]bool),
		accs:       make(map[uint16]*accumulator),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "demux")
	return d
}

// SetHandler installs the callback invoked for each parsed table. It may be
// replaced at any time; Feed always dispatches to the handler installed at
// the time the section completes.
func (d *Demux) SetHandler(h TableHandler) {
	d.handler = h
}

// Subscribe starts reassembling sections on pid. Subscribing a PID that is
// already subscribed is a no-op.
func (d *Demux) Subscribe(pid uint16) {
	if d.subscribed[pid] {
		return
	}
	d.subscribed[pid] = true
	d.accs[pid] = newAccumulator(pid)
}

// Unsubscribe stops reassembling sections on pid and releases its buffered
// packets.
func (d *Demux) Unsubscribe(pid uint16) {
	delete(d.subscribed, pid)
	delete(d.accs, pid)
}

// Feed offers one packet to the demultiplexer. If pid is not subscribed the
// packet is ignored. If the packet completes a section on a subscribed PID,
// the section is parsed and, on success, dispatched to the handler before
// Feed returns.
func (d *Demux) Feed(pkt *psi.Packet) {
	pid := pkt.Header.PID
	if !d.subscribed[pid] {
		return
	}

	acc := d.accs[pid]
	flushed := acc.add(pkt)
	if flushed == nil {
		return
	}

	d.dispatch(pid, flushed)
}

func (d *Demux) dispatch(pid uint16, packets []*psi.Packet) {
	var payload []byte
	for _, p := range packets {
		payload = append(payload, p.Payload...)
	}
	if len(payload) == 0 {
		return
	}

	sections, err := psi.SplitSections(payload)
	if err != nil {
		d.log.Warn("malformed section header, skip", "pid", pid, "error", err)
		return
	}

	for _, sec := range sections {
		table, name, err := parseSection(sec)
		if err != nil {
			d.log.Warn("broken table, skip", "pid", pid, "table", name, "error", err)
			continue
		}
		if table == nil {
			continue // table ID we don't decode
		}
		if d.handler != nil {
			d.handler(pid, table)
		}
	}
}
