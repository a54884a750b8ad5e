package gate

import "time"

// TargetOption is the immutable configuration spec.md §3 calls "option":
// the service/event to gate for, the reference clock pair used to project
// wall-clock onto the PCR timeline, and the start/end margins.
type TargetOption struct {
	SID uint16 // target service id
	EID uint16 // target event id

	ClockPCR  int64     // PCR value observed at ClockTime
	ClockTime time.Time // wall-clock instant corresponding to ClockPCR

	StartMargin time.Duration // subtracted from the event's start time
	EndMargin   time.Duration // added to the event's end time

	// PreStreaming, when set, forwards PAT packets live during WaitReady
	// instead of buffering them for the flush at the Streaming transition.
	PreStreaming bool
}

// Option configures a Filter at construction time, independent of the
// target/event it gates for.
type Option func(*Filter)
