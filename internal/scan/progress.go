package scan

import (
	"sync/atomic"
	"time"
)

// Progress holds live counters updated by the pipeline's worker and writer
// goroutines. All fields are atomic so they can be read concurrently by a
// progress-reporting goroutine without locking.
type Progress struct {
	TotalFiles atomic.Int64
	TotalBytes atomic.Int64

	FilesSeen      atomic.Int64
	FilesHashed    atomic.Int64
	FilesSkipped   atomic.Int64
	FilesErrored   atomic.Int64
	SnapshotsTaken atomic.Int64
	BytesRead      atomic.Int64
	FilesWritten   atomic.Int64
}

// Snapshot is an immutable view of Progress at one instant, the shape
// reported to callers.
type Snapshot struct {
	TotalFiles     int64
	TotalBytes     int64
	FilesSeen      int64
	FilesHashed    int64
	FilesSkipped   int64
	FilesErrored   int64
	SnapshotsTaken int64
	BytesRead      int64
	FilesWritten   int64
}

func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		TotalFiles:     p.TotalFiles.Load(),
		TotalBytes:     p.TotalBytes.Load(),
		FilesSeen:      p.FilesSeen.Load(),
		FilesHashed:    p.FilesHashed.Load(),
		FilesSkipped:   p.FilesSkipped.Load(),
		FilesErrored:   p.FilesErrored.Load(),
		SnapshotsTaken: p.SnapshotsTaken.Load(),
		BytesRead:      p.BytesRead.Load(),
		FilesWritten:   p.FilesWritten.Load(),
	}
}

// reportThrottle is the minimum interval between progress callback
// invocations during Phase B — frequent enough to feel live, infrequent
// enough not to dominate a fast scan's CPU budget.
const reportThrottle = 100 * time.Millisecond

// reportLoop calls onProgress at a fixed interval until stop is closed, then
// calls it once more with the final state.
func reportLoop(p *Progress, onProgress func(Snapshot), stop <-chan struct{}) {
	if onProgress == nil {
		return
	}
	ticker := time.NewTicker(reportThrottle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			onProgress(p.Snapshot())
		case <-stop:
			onProgress(p.Snapshot())
			return
		}
	}
}
