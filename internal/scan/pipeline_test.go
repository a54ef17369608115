package scan

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapsift/fileset/internal/hashing"
	"github.com/snapsift/fileset/internal/video"
)

func TestProcessFileHashesPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{HashFiles: true}
	d := deps{hasher: hashing.New(), keyframes: video.NoopProvider{}}
	fi := FileInfo{Path: path, Size: 11, MTime: time.Now()}

	r, err := processFile(context.Background(), "scan-1", cfg, d, fi)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.file.BLAKE3) == 0 || len(r.file.SHA256) == 0 {
		t.Errorf("expected crypto digests to be populated, got %+v", r.file)
	}
	if r.file.AHash != nil {
		t.Errorf("expected no perceptual hash for a text file")
	}
}

func TestProcessFileSkipsHashingWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{HashFiles: false}
	d := deps{hasher: hashing.New(), keyframes: video.NoopProvider{}}
	fi := FileInfo{Path: path, Size: 5, MTime: time.Now()}

	r, err := processFile(context.Background(), "scan-1", cfg, d, fi)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.file.BLAKE3) != 0 {
		t.Errorf("expected no digest when HashFiles is disabled")
	}
}

func TestProcessFileComputesPerceptualHashForImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), 0, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := Config{PerceptualHashes: true}
	d := deps{hasher: hashing.New(), keyframes: video.NoopProvider{}}
	fi := FileInfo{Path: path, Size: info.Size(), MTime: info.ModTime()}

	r, err := processFile(context.Background(), "scan-1", cfg, d, fi)
	if err != nil {
		t.Fatal(err)
	}
	if r.file.AHash == nil || r.file.DHash == nil || r.file.PHash == nil {
		t.Errorf("expected all three perceptual hashes, got %+v", r.file)
	}
}

func TestProcessFileVideoWithNoopProviderSkipsSnapshots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("not a real video"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{CaptureSnapshots: true, SnapshotsPerVideo: 3, SnapshotMaxDim: 512}
	d := deps{hasher: hashing.New(), keyframes: video.NoopProvider{}}
	fi := FileInfo{Path: path, Size: 17, MTime: time.Now()}

	r, err := processFile(context.Background(), "scan-1", cfg, d, fi)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.snapshots) != 0 {
		t.Errorf("expected no snapshots from a noop provider, got %d", len(r.snapshots))
	}
	if !r.skipped {
		t.Error("expected skipped to be true when the keyframe provider is unavailable")
	}
}

func TestProcessFileHashFailureStillReturnsRowSkipped(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "gone.txt")

	cfg := Config{HashFiles: true}
	d := deps{hasher: hashing.New(), keyframes: video.NoopProvider{}}
	fi := FileInfo{Path: missing, Size: 0, MTime: time.Now()}

	r, err := processFile(context.Background(), "scan-1", cfg, d, fi)
	if err != nil {
		t.Fatal(err)
	}
	if !r.skipped {
		t.Error("expected skipped to be true when hashing fails")
	}
	if r.file.Path != missing {
		t.Error("expected the file row to still be returned, not discarded")
	}
}
