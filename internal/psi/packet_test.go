package psi

import "testing"

func TestParsePacket_Normal(t *testing.T) {
	t.Parallel()
	payload := []byte{0x01, 0x02, 0x03}
	buf := makePacket(0x100, 5, false, payload)

	p, err := ParsePacket(buf)
	if err != nil {
		t.Fatal(err)
	}

	if p.Header.PID != 0x100 {
		t.Errorf("PID = %d, want %d", p.Header.PID, 0x100)
	}
	if p.Header.ContinuityCounter != 5 {
		t.Errorf("CC = %d, want 5", p.Header.ContinuityCounter)
	}
	if p.Header.PayloadUnitStartIndicator {
		t.Error("PUSI should be false")
	}
	if p.PCR != nil {
		t.Error("PCR should be nil without adaptation field")
	}
	if len(p.Payload) != 184 {
		t.Errorf("payload length = %d, want 184", len(p.Payload))
	}
}

func TestParsePacket_PUSI(t *testing.T) {
	t.Parallel()
	buf := makePacket(0x1E1, 0, true, nil)
	p, err := ParsePacket(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Header.PayloadUnitStartIndicator {
		t.Error("PUSI should be true")
	}
}

func TestParsePacket_BadSyncByte(t *testing.T) {
	t.Parallel()
	buf := make([]byte, packetSize)
	buf[0] = 0x00
	_, err := ParsePacket(buf)
	if err == nil {
		t.Fatal("expected error for bad sync byte")
	}
}

func TestParsePacket_WrongSize(t *testing.T) {
	t.Parallel()
	_, err := ParsePacket([]byte{0x47, 0x00, 0x00})
	if err == nil {
		t.Fatal("expected error for wrong packet size")
	}
}

func TestParsePacket_PCR(t *testing.T) {
	t.Parallel()
	tests := []int64{0, 1, 90000, UpperBoundForTest - 1}
	for _, pcr := range tests {
		buf := makePacketWithPCR(0x200, 0, pcr, []byte{0xAA})
		p, err := ParsePacket(buf)
		if err != nil {
			t.Fatal(err)
		}
		if p.PCR == nil {
			t.Fatal("expected PCR to be set")
		}
		if *p.PCR != pcr {
			t.Errorf("PCR = %d, want %d", *p.PCR, pcr)
		}
		if !p.Header.HasAdaptationField {
			t.Error("HasAdaptationField should be true")
		}
		if len(p.Payload) == 0 || p.Payload[0] != 0xAA {
			t.Error("payload should follow the adaptation field")
		}
	}
}

// UpperBoundForTest mirrors pcr.UpperBound without importing the pcr
// package from a test in an unrelated package.
const UpperBoundForTest = 1 << 33
