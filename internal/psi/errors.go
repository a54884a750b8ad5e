package psi

import (
	"errors"
	"fmt"
)

// Sentinel errors for section parsing. Callers distinguish failure modes
// with errors.Is; the gating layer treats all of these as "skip this
// section, keep processing."
var (
	ErrShort        = errors.New("psi: section too short")
	ErrCRC          = errors.New("psi: CRC32 mismatch")
	ErrPointerField = errors.New("psi: pointer field out of range")
	ErrPacketSize   = errors.New("psi: wrong packet size")
	ErrSyncByte     = errors.New("psi: invalid sync byte")
)

// SectionError wraps a parse failure with the table it occurred in, so
// callers can log "broken PAT, skip" without string-matching the message.
type SectionError struct {
	Table string
	Err   error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("psi: %s: %v", e.Table, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}
