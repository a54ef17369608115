package video

// SnapshotTimestamps returns the n evenly-spaced timestamps (seconds) to
// extract frames at for a video of the given duration, per SPEC_FULL.md
// §4.3: dividing the duration into n+1 equal spans and sampling at the
// interior boundaries avoids snapshots landing on black frames at the very
// start or end of the file.
func SnapshotTimestamps(durationSeconds float64, n int) []float64 {
	if n <= 0 || durationSeconds <= 0 {
		return nil
	}
	ts := make([]float64, n)
	step := durationSeconds / float64(n+1)
	for i := 0; i < n; i++ {
		ts[i] = step * float64(i+1)
	}
	return ts
}
