package scan

import (
	"context"
	"time"
)

// Totals is the result of the prescan phase: how many files and bytes the
// real scan pass is about to process. The progress reporter uses this to
// turn raw counters into a completion percentage.
type Totals struct {
	Files int64
	Bytes int64
}

// prescanReportEvery bounds how often prescan emits a progress update —
// every 256 files or every 250ms, whichever comes first, so a prescan over
// a huge tree doesn't starve progress output but also doesn't hammer it on
// tiny files.
const prescanReportEvery = 256

// Prescan walks root once to compute totals before the real scan begins,
// per SPEC_FULL.md §4.5's two-phase design: the engine needs to know "out
// of how many" before it can report a percentage during Phase B.
func Prescan(ctx context.Context, root string, excludePaths map[string]struct{}, numWorkers int, onProgress func(Totals)) (Totals, error) {
	files := make(chan FileInfo, 256)
	go Walk(ctx, root, excludePaths, numWorkers, files)

	var totals Totals
	sinceReport := 0
	lastReport := time.Now()

	for f := range files {
		totals.Files++
		totals.Bytes += f.Size
		sinceReport++

		if onProgress != nil && (sinceReport >= prescanReportEvery || time.Since(lastReport) >= 250*time.Millisecond) {
			onProgress(totals)
			sinceReport = 0
			lastReport = time.Now()
		}

		if ctx.Err() != nil {
			return totals, ctx.Err()
		}
	}

	if onProgress != nil {
		onProgress(totals)
	}
	return totals, ctx.Err()
}
