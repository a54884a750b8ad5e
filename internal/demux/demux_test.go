package demux

import (
	"testing"

	"github.com/nanbu-tv/tsgate/internal/psi"
)

const packetSize = 188

var crcTable [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func appendCRC(section []byte) []byte {
	crc := uint32(0xFFFFFFFF)
	for _, b := range section {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return append(section, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
}

// buildPATSection returns a minimal valid PAT section for one service.
func buildPATSection(tsID, serviceID, pmtPID uint16) []byte {
	section := []byte{
		psi.TableIDPAT,
		0, 0,
		byte(tsID >> 8), byte(tsID),
		0xC1, 0, 0,
		byte(serviceID >> 8), byte(serviceID),
		byte(pmtPID>>8)&0x1F | 0xE0, byte(pmtPID),
	}
	sectionLength := len(section) - 3 + 4
	section[1] = 0xB0 | byte(sectionLength>>8)
	section[2] = byte(sectionLength)
	return appendCRC(section)
}

// buildPMTSection returns a minimal valid PMT section (no ES entries).
func buildPMTSection(serviceID, pcrPID uint16) []byte {
	section := []byte{
		psi.TableIDPMT,
		0, 0,
		byte(serviceID >> 8), byte(serviceID),
		0xC1, 0, 0,
		byte(pcrPID>>8)&0x1F | 0xE0, byte(pcrPID),
		0xF0, 0,
	}
	sectionLength := len(section) - 3 + 4
	section[1] = 0xB0 | byte(sectionLength>>8)
	section[2] = byte(sectionLength)
	return appendCRC(section)
}

// packetsForSection splits a pointer-field-prefixed section across as many
// 184-byte TS packet payloads as needed.
func packetsForSection(pid uint16, section []byte) []*psi.Packet {
	payload := append([]byte{0x00}, section...) // pointer field

	var pkts []*psi.Packet
	cc := uint8(0)
	for i := 0; i < len(payload); i += 184 {
		end := i + 184
		if end > len(payload) {
			end = len(payload)
		}
		chunk := make([]byte, 184)
		copy(chunk, payload[i:end])

		buf := make([]byte, packetSize)
		buf[0] = 0x47
		buf[1] = byte(pid>>8) & 0x1F
		buf[2] = byte(pid)
		if i == 0 {
			buf[1] |= 0x40 // PUSI
		}
		buf[3] = 0x10 | (cc & 0x0F)
		copy(buf[4:], chunk)
		cc++

		pkt, err := psi.ParsePacket(buf)
		if err != nil {
			panic(err)
		}
		pkts = append(pkts, pkt)
	}
	return pkts
}

func TestDemux_PATDispatch(t *testing.T) {
	t.Parallel()
	d := New()
	d.Subscribe(0x0000)

	var got *psi.PAT
	d.SetHandler(func(pid uint16, table any) {
		if pid != 0x0000 {
			t.Errorf("pid = 0x%X, want 0x0000", pid)
		}
		if pat, ok := table.(*psi.PAT); ok {
			got = pat
		}
	})

	section := buildPATSection(1, 1, 0x1000)
	for _, pkt := range packetsForSection(0x0000, section) {
		d.Feed(pkt)
	}

	if got == nil {
		t.Fatal("handler was never called with a PAT")
	}
	if got.PMTPID[1] != 0x1000 {
		t.Errorf("PMT PID = 0x%X, want 0x1000", got.PMTPID[1])
	}
}

func TestDemux_UnsubscribedPIDIgnored(t *testing.T) {
	t.Parallel()
	d := New()
	called := false
	d.SetHandler(func(uint16, any) { called = true })

	section := buildPATSection(1, 1, 0x1000)
	for _, pkt := range packetsForSection(0x0000, section) {
		d.Feed(pkt)
	}

	if called {
		t.Error("handler should not fire for an unsubscribed PID")
	}
}

func TestDemux_UnsubscribeDropsBufferedState(t *testing.T) {
	t.Parallel()
	d := New()
	d.Subscribe(0x1000)

	section := buildPMTSection(1, 0x100)
	pkts := packetsForSection(0x1000, section)
	if len(pkts) < 1 {
		t.Fatal("expected at least one packet")
	}

	// Feed only the first packet of a (possibly) multi-packet section,
	// then unsubscribe: the partial buffer must be discarded, not
	// resurrected by a later re-subscribe.
	d.Feed(pkts[0])
	d.Unsubscribe(0x1000)
	d.Subscribe(0x1000)

	called := false
	d.SetHandler(func(uint16, any) { called = true })
	for _, pkt := range pkts[1:] {
		d.Feed(pkt)
	}

	if called {
		t.Error("handler should not fire from a buffer that survived Unsubscribe")
	}
}

func TestDemux_BrokenSectionSkippedNotFatal(t *testing.T) {
	t.Parallel()
	d := New()
	d.Subscribe(0x0000)

	section := buildPATSection(1, 1, 0x1000)
	section[len(section)-1] ^= 0xFF // corrupt CRC

	callCount := 0
	d.SetHandler(func(uint16, any) { callCount++ })

	for _, pkt := range packetsForSection(0x0000, section) {
		d.Feed(pkt)
	}
	if callCount != 0 {
		t.Errorf("handler should not fire for a broken section, fired %d times", callCount)
	}

	// The demux must still be usable afterwards.
	good := buildPATSection(1, 1, 0x1001)
	var got *psi.PAT
	d.SetHandler(func(pid uint16, table any) {
		if pat, ok := table.(*psi.PAT); ok {
			got = pat
		}
	})
	for _, pkt := range packetsForSection(0x0000, good) {
		d.Feed(pkt)
	}
	if got == nil {
		t.Fatal("demux should recover and parse the next good section")
	}
}
