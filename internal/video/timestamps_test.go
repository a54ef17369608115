package video

import "testing"

func TestSnapshotTimestampsEvenlySpaced(t *testing.T) {
	got := SnapshotTimestamps(120, 3)
	want := []float64{30, 60, 90}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ts[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSnapshotTimestampsNeverHitsBoundaries(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10} {
		ts := SnapshotTimestamps(100, n)
		for _, v := range ts {
			if v <= 0 || v >= 100 {
				t.Errorf("timestamp %v out of open interval (0,100) for n=%d", v, n)
			}
		}
	}
}

func TestSnapshotTimestampsZeroOrNegativeInputs(t *testing.T) {
	if got := SnapshotTimestamps(0, 3); got != nil {
		t.Errorf("expected nil for zero duration, got %v", got)
	}
	if got := SnapshotTimestamps(100, 0); got != nil {
		t.Errorf("expected nil for zero count, got %v", got)
	}
	if got := SnapshotTimestamps(100, -1); got != nil {
		t.Errorf("expected nil for negative count, got %v", got)
	}
}
