// Package scan implements the two-phase scan pipeline SPEC_FULL.md §4.5
// describes: a prescan pass to compute totals, followed by a concurrent
// walk-hash-write pass that persists every discovered file to the fileset
// store.
package scan

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/snapsift/fileset/internal/hashing"
	"github.com/snapsift/fileset/internal/model"
	"github.com/snapsift/fileset/internal/store"
	"github.com/snapsift/fileset/internal/video"
)

// Config configures one scan run. One scan root per fileset artifact —
// SPEC_FULL.md's Non-goals explicitly exclude a cross-fileset global index,
// so there is no list of roots to fan out over.
type Config struct {
	Root         string
	RootKind     model.RootKind
	ExcludePaths []string

	HashFiles            bool
	PerceptualHashes     bool
	CaptureSnapshots     bool
	SnapshotsPerVideo    int
	SnapshotMaxDim       int
	ConcurrentProcessing bool

	Workers int
}

// Engine runs scans against one fileset store.
type Engine struct {
	store     *store.Store
	hasher    *hashing.Hasher
	keyframes video.KeyframeProvider
}

// NewEngine constructs an Engine. keyframes may be video.NoopProvider{} when
// video snapshot capture is unavailable or disabled.
func NewEngine(st *store.Store, keyframes video.KeyframeProvider) *Engine {
	return &Engine{store: st, hasher: hashing.New(), keyframes: keyframes}
}

// Run executes one full scan: prescan for totals, then the concurrent
// pipeline, writing results as they complete. onProgress is called at most
// every reportThrottle; it may be nil. Run returns ctx.Err() if cancelled
// mid-scan — already-written files remain persisted (see runWriter).
func (e *Engine) Run(ctx context.Context, scanID string, cfg Config, onProgress func(Snapshot)) error {
	excludeSet := make(map[string]struct{}, len(cfg.ExcludePaths))
	for _, p := range cfg.ExcludePaths {
		excludeSet[p] = struct{}{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if !cfg.ConcurrentProcessing {
		workers = 1
	}

	progress := &Progress{}

	slog.Info("scan: prescan starting", "root", cfg.Root)
	totals, err := Prescan(ctx, cfg.Root, excludeSet, workers, func(t Totals) {
		progress.TotalFiles.Store(t.Files)
		progress.TotalBytes.Store(t.Bytes)
	})
	if err != nil {
		return fmt.Errorf("scan: prescan: %w", err)
	}
	slog.Info("scan: prescan complete", "files", totals.Files, "bytes", totals.Bytes)

	stop := make(chan struct{})
	if onProgress != nil {
		go reportLoop(progress, onProgress, stop)
	}
	defer close(stop)

	files := make(chan FileInfo, workers*4)
	results := make(chan result, workers*4)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		Walk(gctx, cfg.Root, excludeSet, workers, files)
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			d := deps{hasher: e.hasher, keyframes: e.keyframes}
			for fi := range files {
				progress.FilesSeen.Add(1)

				r, err := processFile(gctx, scanID, cfg, d, fi)
				if err != nil {
					progress.FilesErrored.Add(1)
					slog.Warn("scan: file processing failed", "path", fi.Path, "error", err)
					continue
				}
				if r.file.HasCryptoHash() {
					progress.FilesHashed.Add(1)
					progress.BytesRead.Add(fi.Size)
				}
				if r.skipped {
					progress.FilesSkipped.Add(1)
				}
				progress.SnapshotsTaken.Add(int64(len(r.snapshots)))

				select {
				case results <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	writerDone := make(chan error, 1)
	go func() {
		writerDone <- runWriter(ctx, e.store, progress, results)
	}()

	pipelineErr := g.Wait()
	close(results)
	writerErr := <-writerDone

	if pipelineErr != nil {
		return fmt.Errorf("scan: pipeline: %w", pipelineErr)
	}
	if writerErr != nil {
		return fmt.Errorf("scan: writer: %w", writerErr)
	}
	return ctx.Err()
}
