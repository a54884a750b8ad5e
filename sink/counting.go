package sink

import "github.com/nanbu-tv/tsgate/internal/psi"

// Counting is a PacketSink test/ops double that counts forwarded packets
// and records the last one seen, without writing anywhere.
type Counting struct {
	Started bool
	Ended   bool
	Count   int
	Last    *psi.Packet
}

func (c *Counting) Start() error {
	c.Started = true
	return nil
}

func (c *Counting) End() error {
	c.Ended = true
	return nil
}

func (c *Counting) HandlePacket(pkt *psi.Packet) (bool, error) {
	c.Count++
	c.Last = pkt
	return true, nil
}
