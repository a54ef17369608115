// Command filesetscan runs a single fileset scan to completion, wiring
// config, storage, and the scan engine together. Argument parsing stays
// intentionally thin — a dedicated CLI front-end is out of scope (see
// SPEC_FULL.md §1); this binary exists to exercise the pipeline end to end.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/snapsift/fileset/internal/config"
	"github.com/snapsift/fileset/internal/drive"
	"github.com/snapsift/fileset/internal/model"
	"github.com/snapsift/fileset/internal/scan"
	"github.com/snapsift/fileset/internal/scheduler"
	"github.com/snapsift/fileset/internal/store"
	"github.com/snapsift/fileset/internal/video"
)

// version is injected at build time via -ldflags; defaults to "dev".
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single scan and exit, ignoring the schedule")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})))
	slog.Info("filesetscan starting", "version", version, "root", cfg.Root, "fileset_path", cfg.FilesetPath)

	st, err := store.Open(cfg.FilesetPath)
	if err != nil {
		slog.Error("open fileset store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if settings, err := st.LoadSettings(); err == nil {
		config.MergeSettings(cfg, settings)
	}

	prober := drive.NewProber()
	driveInfo, err := prober.ProbeForPath(cfg.Root)
	if err != nil {
		slog.Warn("drive probe failed", "error", err)
	}

	scanID := ensureScanRecord(st, cfg, driveInfo)

	keyframes := video.KeyframeProvider(video.NoopProvider{})
	if cfg.CaptureSnapshots {
		keyframes = video.NewFFmpegProvider()
	}
	engine := scan.NewEngine(st, keyframes)
	mgr := scan.NewManager(engine)

	scanCfg := scan.Config{
		Root:                 cfg.Root,
		RootKind:             model.RootKind(cfg.RootKind),
		ExcludePaths:         cfg.ExcludePaths,
		HashFiles:            cfg.HashFiles,
		PerceptualHashes:     cfg.PerceptualHashes,
		CaptureSnapshots:     cfg.CaptureSnapshots,
		SnapshotsPerVideo:    cfg.SnapshotsPerVideo,
		SnapshotMaxDim:       cfg.SnapshotMaxDim,
		ConcurrentProcessing: cfg.ConcurrentProcessing,
		Workers:              clampWorkers(cfg.Workers),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOne := func() {
		slog.Info("scan starting", "scan_id", scanID)
		setFilesetStatus(st, model.StatusInProgress)

		_, err := mgr.Start(ctx, scanCfg, func(s scan.Snapshot) {
			slog.Info("scan progress",
				"seen", s.FilesSeen, "total", s.TotalFiles,
				"hashed", s.FilesHashed, "bytes_read", humanize.Bytes(uint64(s.BytesRead)),
				"errors", s.FilesErrored)
		})
		if err != nil {
			slog.Error("scan start", "error", err)
			setFilesetStatus(st, model.StatusIncomplete)
			return
		}

		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
	waitLoop:
		for {
			select {
			case <-ticker.C:
				if mgr.Active() == nil {
					break waitLoop
				}
			case <-ctx.Done():
				if _, err := mgr.Cancel(); err != nil {
					slog.Warn("scan cancel", "error", err)
				}
				setFilesetStatus(st, model.StatusIncomplete)
				slog.Info("scan cancelled", "scan_id", scanID)
				return
			}
		}

		setFilesetStatus(st, model.StatusCompleted)
		slog.Info("scan complete", "scan_id", scanID)
	}

	if *once || cfg.Schedule == "" {
		runOne()
		return
	}

	sched := scheduler.New()
	if err := sched.SetRescanJob(cfg.Schedule, runOne); err != nil {
		slog.Warn("invalid schedule, running once instead", "error", err)
		runOne()
		return
	}
	sched.Start()
	defer sched.Stop()

	runOne()
	<-ctx.Done()
	slog.Info("filesetscan stopped")
}

// ensureScanRecord records the fileset's single scan the first time this
// artifact is opened. Later runs against the same artifact reuse the
// existing scan id — an artifact is always one root, one scan record.
func ensureScanRecord(st *store.Store, cfg *config.Config, driveInfo drive.Info) string {
	settings, _ := st.LoadSettings()
	if id, ok := settings["scan_id"]; ok && id != "" {
		return id
	}

	scanRec := model.Scan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		RootKind:  model.RootKind(cfg.RootKind),
		RootPath:  cfg.Root,
		Drive:     model.DriveMetadata{ID: driveInfo.ID, Label: driveInfo.Label, FSType: driveInfo.FSType},
	}
	if err := st.InsertScan(scanRec); err != nil {
		slog.Error("insert scan record", "error", err)
		os.Exit(1)
	}
	if err := st.SaveSetting("scan_id", scanRec.ID); err != nil {
		slog.Warn("persist scan id", "error", err)
	}
	return scanRec.ID
}

// setFilesetStatus updates only the fileset's lifecycle status (§3), leaving
// any previously recorded name/description/notes untouched.
func setFilesetStatus(st *store.Store, status model.FilesetStatus) {
	meta, err := st.GetFilesetMetadata()
	if err != nil {
		slog.Warn("read fileset metadata", "error", err)
	}
	meta.Status = status
	meta.AppVersion = version
	meta.HostOS = runtime.GOOS
	if err := st.SetFilesetMetadata(meta); err != nil {
		slog.Warn("set fileset status", "status", status, "error", err)
	}
}

func clampWorkers(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > 8 {
		return 8
	}
	if n > 0 {
		return n
	}
	return 4
}

// parseLogLevel converts a config string ("debug", "info", "warn", "error")
// to its slog.Level equivalent. Unknown values default to Info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
