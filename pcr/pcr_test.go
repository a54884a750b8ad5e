package pcr

import (
	"testing"
	"time"
)

func TestCompare_Basic(t *testing.T) {
	t.Parallel()
	if Compare(10, 10) != 0 {
		t.Error("equal PCRs should compare as 0")
	}
	if Compare(20, 10) <= 0 {
		t.Error("20 should compare after 10")
	}
	if Compare(10, 20) >= 0 {
		t.Error("10 should compare before 20")
	}
}

func TestCompare_Wrap(t *testing.T) {
	t.Parallel()
	// 10 is "after" UpperBound-10 once the counter has wrapped.
	if Compare(10, UpperBound-10) <= 0 {
		t.Error("10 should compare after UpperBound-10 under wrap")
	}
	if Compare(UpperBound-10, 10) >= 0 {
		t.Error("UpperBound-10 should compare before 10 under wrap")
	}
}

func TestCompare_AntiSymmetric(t *testing.T) {
	t.Parallel()
	pairs := [][2]int64{{5, 9000}, {9000, 5}, {1, UpperBound - 1}, {100, 200}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		sa, sb := sign(Compare(a, b)), sign(Compare(b, a))
		if sa != -sb {
			t.Errorf("Compare(%d,%d)=%d sign %d, Compare(%d,%d) sign %d: not anti-symmetric",
				a, b, Compare(a, b), sa, b, a, sb)
		}
	}
}

func TestCompare_EqualityIffEqual(t *testing.T) {
	t.Parallel()
	if (Compare(42, 42) == 0) != true {
		t.Error("Compare(42,42) should be 0")
	}
	if Compare(42, 43) == 0 {
		t.Error("Compare(42,43) should not be 0")
	}
}

func sign(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func TestTimeToPCR_Identity(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	got := TimeToPCR(now, now, 12345)
	if got != 12345 {
		t.Errorf("TimeToPCR(t,t,p) = %d, want 12345", got)
	}
}

func TestTimeToPCR_OneMillisecondStep(t *testing.T) {
	t.Parallel()
	clockTime := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	for _, clockPCR := range []int64{0, 1000, UpperBound - 50} {
		t1 := clockTime.Add(6 * time.Hour)
		t2 := t1.Add(time.Millisecond)
		p1 := TimeToPCR(t1, clockTime, clockPCR)
		p2 := TimeToPCR(t2, clockTime, clockPCR)
		diff := (p2 - p1 + UpperBound) % UpperBound
		if diff != TicksPerMs {
			t.Errorf("PCR step over 1ms = %d, want %d", diff, TicksPerMs)
		}
	}
}

func TestTimeToPCR_NegativeOffset(t *testing.T) {
	t.Parallel()
	clockTime := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	before := clockTime.Add(-1 * time.Second)
	got := TimeToPCR(before, clockTime, 0)
	want := (UpperBound - TicksPerMs*1000) % UpperBound
	if got != want {
		t.Errorf("TimeToPCR before clock_time = %d, want %d", got, want)
	}
}
