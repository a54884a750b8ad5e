package demux

import "github.com/nanbu-tv/tsgate/internal/psi"

// accumulator buffers packets for a single subscribed PID until a PUSI
// boundary or a complete PSI section triggers a flush.
type accumulator struct {
	pid     uint16
	packets []*psi.Packet
}

func newAccumulator(pid uint16) *accumulator {
	return &accumulator{pid: pid}
}

// add buffers p and returns the previously buffered packets if this packet
// completed them (a new PUSI arrived, or the section reassembled from the
// buffer is now complete). It returns nil while still accumulating.
func (a *accumulator) add(p *psi.Packet) []*psi.Packet {
	if p.Header.TransportErrorIndicator {
		a.packets = nil
		return nil
	}
	if !p.Header.HasPayload {
		return nil
	}

	if len(a.packets) > 0 && !p.Header.DiscontinuityIndicator {
		prev := a.packets[len(a.packets)-1].Header.ContinuityCounter
		expected := (prev + 1) & 0x0F
		if p.Header.ContinuityCounter != expected {
			if p.Header.ContinuityCounter == prev {
				return nil // duplicate packet, drop
			}
			a.packets = nil // unsignaled discontinuity, discard
		}
	}

	var flushed []*psi.Packet

	if p.Header.PayloadUnitStartIndicator && len(a.packets) > 0 {
		flushed = a.packets
		a.packets = nil
	}

	a.packets = append(a.packets, p)

	if flushed == nil && isComplete(a.packets) {
		flushed = a.packets
		a.packets = nil
	}

	return flushed
}

func isComplete(packets []*psi.Packet) bool {
	var payload []byte
	for _, p := range packets {
		payload = append(payload, p.Payload...)
	}
	return psi.IsSectionComplete(payload)
}
