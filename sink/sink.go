// Package sink provides downstream packet sink implementations: the
// spec.md §6 "packet sink contract" that a Program Filter forwards its
// gated packets to.
package sink

import "github.com/nanbu-tv/tsgate/internal/psi"

// PacketSink receives the packets a gating session decides to forward.
// HandlePacket returning false is a request to stop calling it.
type PacketSink interface {
	Start() error
	End() error
	HandlePacket(pkt *psi.Packet) (bool, error)
}
