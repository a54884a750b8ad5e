// Package psi parses the MPEG-TS packet header, the PCR carried in the
// adaptation field, and the PSI/SI sections (PAT, PMT, EIT present/following
// actual) that the gating layer needs. It is deliberately narrow: it does
// not decode elementary-stream payloads or any descriptor beyond the fields
// consumed by PAT/PMT/EIT.
package psi

import "time"

// Packet is a parsed 188-byte MPEG-TS transport stream packet. Raw retains
// the exact bytes the packet was parsed from, so a gating stage can forward
// it downstream byte-for-byte without re-encoding.
type Packet struct {
	Header  PacketHeader
	Payload []byte
	PCR     *int64 // 33-bit PCR base, nil when the adaptation field has none
	Raw     []byte
}

// PacketHeader contains the parsed header fields of a transport stream packet.
type PacketHeader struct {
	PID                       uint16
	ContinuityCounter         uint8
	HasAdaptationField        bool
	HasPayload                bool
	PayloadUnitStartIndicator bool
	TransportErrorIndicator   bool
	DiscontinuityIndicator    bool
}

// PAT is the parsed Program Association Table.
type PAT struct {
	TransportStreamID uint16
	PMTPID            map[uint16]uint16 // service_id -> PMT PID
}

// PMT is the parsed Program Map Table.
type PMT struct {
	ServiceID uint16
	PCRPID    uint16
}

// EIT is a parsed Event Information Table, present/following, actual TS.
type EIT struct {
	OriginalNetworkID uint16
	TransportStreamID uint16
	ServiceID         uint16
	Events            []EITEvent // 0, 1 (present only), or 2 (present+following)
}

// EITEvent is a single event entry within an EIT section.
type EITEvent struct {
	EventID   uint16
	StartTime time.Time // broadcast wall-clock (JST)
	Duration  time.Duration
}
