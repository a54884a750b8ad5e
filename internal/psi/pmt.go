package psi

// ParsePMT decodes a single PMT section (table_id 0x02). Only the fields
// the gating layer consumes are kept: service_id (program_number) and
// PCR_PID. Elementary stream entries and descriptors are skipped.
//
// Layout:
//
//	[0]     table_id
//	[1-2]   section_syntax_indicator(1) zero(1) reserved(2) section_length(12)
//	[3-4]   program_number
//	[5]     reserved(2) version(5) current_next(1)
//	[6]     section_number
//	[7]     last_section_number
//	[8-9]   reserved(3) PCR_PID(13)
//	[10-11] reserved(4) program_info_length(12)
//	[...]   program descriptors, elementary stream entries
//	[...]   CRC32
func ParsePMT(data []byte) (*PMT, error) {
	if err := verifyCRC32(data); err != nil {
		return nil, err
	}
	if len(data) < 16 { // 12-byte header + 4-byte CRC
		return nil, ErrShort
	}

	return &PMT{
		ServiceID: uint16(data[3])<<8 | uint16(data[4]),
		PCRPID:    uint16(data[8]&0x1F)<<8 | uint16(data[9]),
	}, nil
}
