// internal/presence/filter_test.go
package presence

import (
	"math"
	"testing"
)

func TestEstimate_ReferencePoints(t *testing.T) {
	cases := []struct {
		rssi int16
		want float64
	}{
		{-59, 1.0},  // reference power at 1 m
		{-79, 10.0}, // one decade out
		{-39, 0.1},  // one decade in
	}
	for _, c := range cases {
		got := Estimate(c.rssi)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Estimate(%d) = %g, want %g", c.rssi, got, c.want)
		}
	}
}

func TestCloseCount_BoundaryAndUnknownRSSI(t *testing.T) {
	ads := []Advertisement{
		{Addr: "aa", RSSI: -71}, // ~3.98 m, inside
		{Addr: "bb", RSSI: -72}, // ~4.47 m, outside
		{Addr: "cc", RSSI: 0},   // no measurement, skipped
		{Addr: "dd", RSSI: -40}, // well inside
	}

	if got := CloseCount(ads, 4.0); got != 2 {
		t.Fatalf("CloseCount = %d, want 2", got)
	}
}

func TestFilter_FirstPositiveSampleFlips(t *testing.T) {
	f := NewFilter(3)

	changed, present := f.Push(3)
	if !changed || !present {
		t.Fatalf("first positive sample: changed=%v present=%v, want true/true", changed, present)
	}

	// An immediate negative sample leaves the ratio at exactly 0.5.
	changed, present = f.Push(0)
	if changed || !present {
		t.Fatalf("ratio 1/2: changed=%v present=%v, want false/true", changed, present)
	}
}

func TestFilter_NegativeSamplesFromEmptyStayAbsent(t *testing.T) {
	f := NewFilter(3)

	for i := 0; i < 2*WindowSize; i++ {
		if changed, present := f.Push(0); changed || present {
			t.Fatalf("push %d: changed=%v present=%v, want false/false", i, changed, present)
		}
	}
}

func TestFilter_HalfRatioHoldsUntilEviction(t *testing.T) {
	f := NewFilter(1)

	for i := 0; i < WindowSize/2; i++ {
		f.Push(1)
	}
	for i := 0; i < WindowSize/2; i++ {
		if _, present := f.Push(0); !present {
			t.Fatalf("present dropped while ratio still 1/2")
		}
	}

	// The window now holds 6 positives then 6 negatives. One more
	// negative evicts a positive and tips the ratio below half.
	changed, present := f.Push(0)
	if !changed || present {
		t.Fatalf("eviction: changed=%v present=%v, want true/false", changed, present)
	}
}

func TestFilter_ThresholdAppliesToSubsequentPushesOnly(t *testing.T) {
	f := NewFilter(3)

	if _, present := f.Push(2); present {
		t.Fatalf("2 close devices under threshold 3 sampled true")
	}

	f.SetThreshold(2)
	if f.Threshold() != 2 {
		t.Fatalf("Threshold() = %d, want 2", f.Threshold())
	}

	// Same count now samples true; one true of two filled is exactly half.
	if _, present := f.Push(2); !present {
		t.Fatalf("2 close devices under threshold 2 sampled false")
	}
}
