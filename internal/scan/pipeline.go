package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/snapsift/fileset/internal/hashing"
	"github.com/snapsift/fileset/internal/media"
	"github.com/snapsift/fileset/internal/model"
	"github.com/snapsift/fileset/internal/phash"
	"github.com/snapsift/fileset/internal/video"
)

// result is one processed file, ready for the writer to persist. skipped
// marks that at least one optional step (decode, probe, keyframe extraction,
// or hashing) failed and was logged rather than aborting the whole file.
type result struct {
	file      model.FileRecord
	snapshots []model.SnapshotRecord
	skipped   bool
}

// deps bundles the pipeline's per-file collaborators. One value is shared
// read-only across all workers.
type deps struct {
	hasher    *hashing.Hasher
	keyframes video.KeyframeProvider
}

// processFile runs every enabled step of SPEC_FULL.md §4.5 over one
// discovered file: classify, perceptual-hash if it's an image, extract
// keyframes if it's a video and snapshots are enabled, crypto-digest if
// hashing is enabled. A failure in any step never aborts the file: it is
// logged and marks the result skipped, and the row is still returned with
// whatever fields were computed. The returned error is always nil.
func processFile(ctx context.Context, scanID string, cfg Config, d deps, fi FileInfo) (result, error) {
	rec := model.FileRecord{
		ScanID:     scanID,
		Path:       fi.Path,
		SizeBytes:  fi.Size,
		ModifiedAt: timePtr(fi.MTime),
	}
	rec.FileType = media.Detect(fi.Path)

	var snaps []model.SnapshotRecord
	var skipped bool

	switch media.KindOf(fi.Path) {
	case media.KindImage:
		if cfg.PerceptualHashes {
			if img, err := media.DecodeImage(fi.Path); err == nil {
				if h, err := phash.Compute(img); err == nil {
					rec.AHash = &h.AHash
					rec.DHash = &h.DHash
					rec.PHash = &h.PHash
				} else {
					slog.Warn("scan: perceptual hash failed", "path", fi.Path, "error", err)
					skipped = true
				}
			} else {
				slog.Debug("scan: image decode skipped", "path", fi.Path, "error", err)
				skipped = true
			}
		}
		meta := media.ExtractImageMeta(fi.Path)
		rec.FFmpegMetadata = media.MarshalMetadata(meta)

	case media.KindVideo:
		if cfg.CaptureSnapshots {
			probe, err := d.keyframes.ProbeFile(ctx, fi.Path)
			if err != nil {
				slog.Debug("scan: video probe unavailable", "path", fi.Path, "error", err)
				skipped = true
				break
			}
			rec.FFmpegMetadata = media.MarshalMetadata(media.VideoMeta{
				DurationSeconds: probe.DurationSeconds,
				Width:           probe.Width,
				Height:          probe.Height,
				CodecName:       probe.CodecName,
				BitRate:         probe.BitRateBPS,
			})

			frames, err := d.keyframes.Keyframes(ctx, fi.Path, cfg.SnapshotsPerVideo, cfg.SnapshotMaxDim)
			if err != nil {
				slog.Debug("scan: keyframe extraction failed", "path", fi.Path, "error", err)
				skipped = true
				break
			}

			if cfg.PerceptualHashes && len(frames) > 0 {
				middle := frames[len(frames)/2]
				if h, err := phash.Compute(middle); err == nil {
					rec.AHash = &h.AHash
					rec.DHash = &h.DHash
					rec.PHash = &h.PHash
				} else {
					slog.Warn("scan: perceptual hash of middle keyframe failed", "path", fi.Path, "error", err)
					skipped = true
				}
			}

			for i, frame := range frames {
				scaled := media.ResizeFit(frame, cfg.SnapshotMaxDim, cfg.SnapshotMaxDim)
				jpegBytes, err := media.EncodeJPEG(scaled, 80)
				if err != nil {
					skipped = true
					continue
				}
				snaps = append(snaps, model.SnapshotRecord{SnapshotIndex: i, Image: jpegBytes})
			}
		}
	}

	if cfg.HashFiles {
		digest, err := d.hasher.Digest(fi.Path)
		if err != nil {
			slog.Warn("scan: crypto digest failed", "path", fi.Path, "error", err)
			skipped = true
		} else {
			rec.BLAKE3 = digest.BLAKE3[:]
			rec.SHA256 = digest.SHA256[:]
		}
	}

	return result{file: rec, snapshots: snaps, skipped: skipped}, nil
}

func timePtr(t time.Time) *time.Time { return &t }
