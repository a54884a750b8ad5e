package psi

import "testing"

func TestSplitSections_Single(t *testing.T) {
	t.Parallel()
	section := buildPAT(1, map[uint16]uint16{1: 0x1000})
	payload := append([]byte{0x00}, section...) // pointer field

	sections, err := SplitSections(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].TableID != TableIDPAT {
		t.Errorf("table_id = 0x%02X, want PAT", sections[0].TableID)
	}
}

func TestSplitSections_Stuffing(t *testing.T) {
	t.Parallel()
	section := buildPMT(1, 0x100)
	payload := append([]byte{0x00}, section...)
	payload = append(payload, 0xFF, 0xFF, 0xFF)

	sections, err := SplitSections(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
}

func TestSplitSections_PointerFieldOutOfRange(t *testing.T) {
	t.Parallel()
	_, err := SplitSections([]byte{0x10})
	if err == nil {
		t.Fatal("expected pointer-field error")
	}
}

func TestIsSectionComplete(t *testing.T) {
	t.Parallel()
	section := buildPAT(1, map[uint16]uint16{1: 0x1000})
	payload := append([]byte{0x00}, section...)

	if !IsSectionComplete(payload) {
		t.Error("expected complete section")
	}

	// A truncated payload (section_length promises more bytes than present)
	// is not complete.
	truncated := payload[:len(payload)-3]
	if IsSectionComplete(truncated) {
		t.Error("expected truncated section to be incomplete")
	}
}
