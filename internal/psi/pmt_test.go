package psi

import "testing"

func TestParsePMT(t *testing.T) {
	t.Parallel()
	section := buildPMT(1, 0x100)

	pmt, err := ParsePMT(section)
	if err != nil {
		t.Fatal(err)
	}
	if pmt.ServiceID != 1 {
		t.Errorf("service_id = %d, want 1", pmt.ServiceID)
	}
	if pmt.PCRPID != 0x100 {
		t.Errorf("pcr_pid = 0x%X, want 0x100", pmt.PCRPID)
	}
}

func TestParsePMT_BadCRC(t *testing.T) {
	t.Parallel()
	section := buildPMT(1, 0x100)
	section[len(section)-1] ^= 0xFF

	if _, err := ParsePMT(section); err == nil {
		t.Fatal("expected CRC error")
	}
}
