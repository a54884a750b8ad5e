package psi

// ParseEIT decodes a single EIT present/following, actual-TS section
// (table_id 0x4E). Only up to two events (present, following) ever appear
// in a p/f section; short-event and extended-event descriptors are not
// decoded since the gating layer only consumes event_id/start_time/duration.
//
// Layout:
//
//	[0]     table_id
//	[1-2]   section_syntax_indicator(1) zero(1) reserved(2) section_length(12)
//	[3-4]   service_id
//	[5]     reserved(2) version(5) current_next(1)
//	[6]     section_number
//	[7]     last_section_number
//	[8-9]   transport_stream_id
//	[10-11] original_network_id
//	[12]    segment_last_section_number
//	[13]    last_table_id
//	[14..]  events: event_id(2) start_time(5) duration(3)
//	                running_status(3) free_CA_mode(1) descriptors_loop_length(12)
//	                descriptors(descriptors_loop_length)
//	[...]   CRC32
func ParseEIT(data []byte) (*EIT, error) {
	if err := verifyCRC32(data); err != nil {
		return nil, err
	}
	if len(data) < 18 { // 14-byte header + 4-byte CRC
		return nil, ErrShort
	}

	sectionLength := int(data[1]&0x0F)<<8 | int(data[2])
	sectionEnd := 3 + sectionLength
	if sectionEnd > len(data) {
		sectionEnd = len(data)
	}

	eit := &EIT{
		ServiceID:         uint16(data[3])<<8 | uint16(data[4]),
		TransportStreamID: uint16(data[8])<<8 | uint16(data[9]),
		OriginalNetworkID: uint16(data[10])<<8 | uint16(data[11]),
	}

	offset := 14
	eventsEnd := sectionEnd - 4 // CRC32
	for offset+12 <= eventsEnd {
		eventID := uint16(data[offset])<<8 | uint16(data[offset+1])
		startTime := decodeStartTime(data[offset+2 : offset+7])
		duration := decodeDuration(data[offset+7 : offset+10])
		descLoopLength := int(data[offset+10]&0x0F)<<8 | int(data[offset+11])

		eit.Events = append(eit.Events, EITEvent{
			EventID:   eventID,
			StartTime: startTime,
			Duration:  duration,
		})

		offset += 12 + descLoopLength
		if len(eit.Events) == 2 {
			break // a p/f section never carries more than present+following
		}
	}

	return eit, nil
}
