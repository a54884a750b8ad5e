package psi

import "testing"

func TestParsePAT(t *testing.T) {
	t.Parallel()
	section := buildPAT(1, map[uint16]uint16{1: 0x1000, 2: 0x1001})

	pat, err := ParsePAT(section)
	if err != nil {
		t.Fatal(err)
	}
	if pat.TransportStreamID != 1 {
		t.Errorf("ts_id = %d, want 1", pat.TransportStreamID)
	}
	if pat.PMTPID[1] != 0x1000 {
		t.Errorf("PMT PID for service 1 = 0x%X, want 0x1000", pat.PMTPID[1])
	}
	if pat.PMTPID[2] != 0x1001 {
		t.Errorf("PMT PID for service 2 = 0x%X, want 0x1001", pat.PMTPID[2])
	}
}

func TestParsePAT_BadCRC(t *testing.T) {
	t.Parallel()
	section := buildPAT(1, map[uint16]uint16{1: 0x1000})
	section[len(section)-1] ^= 0xFF

	if _, err := ParsePAT(section); err == nil {
		t.Fatal("expected CRC error")
	}
}

func TestParsePAT_Short(t *testing.T) {
	t.Parallel()
	if _, err := ParsePAT([]byte{0x00, 0x00, 0x00}); err == nil {
		t.Fatal("expected short-section error")
	}
}
