// Package pcr implements wrap-aware arithmetic over MPEG Program Clock
// Reference values: the 33-bit, 90 kHz base counter carried in a transport
// stream's adaptation field.
package pcr

import "time"

const (
	// UpperBound is the modulus of the 33-bit PCR base counter.
	UpperBound int64 = 1 << 33

	// TicksPerMs is the number of PCR ticks per millisecond (90 kHz clock).
	TicksPerMs int64 = 90
)

// Compare returns a signed value whose sign encodes the ordering between
// lhs and rhs under wrap-around: negative when lhs < rhs, zero when equal,
// positive when lhs > rhs. It is only correct when the true temporal
// separation between lhs and rhs is less than UpperBound/2 (~13.27 hours),
// which always holds for PCR values observed close together in a live
// stream.
//
// It computes a = lhs - rhs, b = lhs - (UpperBound + rhs) and
// c = (UpperBound + lhs) - rhs and returns whichever has the smallest
// absolute magnitude, so a PCR just after wrap still compares as "after"
// one just before it, whichever side of the comparison it is on.
func Compare(lhs, rhs int64) int64 {
	a := lhs - rhs
	b := lhs - (UpperBound + rhs)
	c := (UpperBound + lhs) - rhs
	best := a
	if abs(b) < abs(best) {
		best = b
	}
	if abs(c) < abs(best) {
		best = c
	}
	return best
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// TimeToPCR projects a wall-clock instant onto the PCR timeline, given a
// reference pair (clockTime, clockPCR) observed at the same moment. The
// result is normalized into [0, UpperBound).
func TimeToPCR(t, clockTime time.Time, clockPCR int64) int64 {
	ms := t.Sub(clockTime).Milliseconds()
	raw := clockPCR + ms*TicksPerMs
	for raw < 0 {
		raw += UpperBound
	}
	return raw % UpperBound
}
