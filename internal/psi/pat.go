package psi

// ParsePAT decodes a single PAT section (table_id 0x00, table bytes as
// returned by SplitSections, CRC32 included).
//
// Layout:
//
//	[0]      table_id
//	[1-2]    section_syntax_indicator(1) zero(1) reserved(2) section_length(12)
//	[3-4]    transport_stream_id
//	[5]      reserved(2) version(5) current_next(1)
//	[6]      section_number
//	[7]      last_section_number
//	[8..N-4] program entries (4 bytes each)
//	[N-4..N] CRC32
func ParsePAT(data []byte) (*PAT, error) {
	if err := verifyCRC32(data); err != nil {
		return nil, err
	}
	if len(data) < 12 { // 8-byte header + 4-byte CRC
		return nil, ErrShort
	}

	sectionLength := int(data[1]&0x0F)<<8 | int(data[2])
	entryStart := 8
	entryEnd := 3 + sectionLength - 4 // subtract CRC32
	if entryEnd > len(data)-4 {
		entryEnd = len(data) - 4
	}

	pat := &PAT{
		TransportStreamID: uint16(data[3])<<8 | uint16(data[4]),
		PMTPID:            make(map[uint16]uint16),
	}

	for i := entryStart; i+4 <= entryEnd; i += 4 {
		programNumber := uint16(data[i])<<8 | uint16(data[i+1])
		pmtPID := uint16(data[i+2]&0x1F)<<8 | uint16(data[i+3])

		if programNumber == 0 {
			continue // NIT PID, not a service
		}

		pat.PMTPID[programNumber] = pmtPID
	}

	return pat, nil
}
