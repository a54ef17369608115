package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegProvider extracts keyframes by shelling out to ffmpeg/ffprobe. It
// requires both binaries on PATH; construct it once per process and share
// it across workers — it holds no per-call state.
type FFmpegProvider struct{}

// NewFFmpegProvider returns a KeyframeProvider backed by the ffmpeg binary.
func NewFFmpegProvider() FFmpegProvider {
	return FFmpegProvider{}
}

// ffprobeOutput mirrors the handful of ffprobe JSON fields this package
// actually reads; ffprobe's full schema is far larger.
type ffprobeOutput struct {
	Format struct {
		DurationStr string `json:"duration"`
		BitRateStr  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// ProbeFile runs ffprobe over path and extracts duration, dimensions, and
// codec name from its first video stream. ffmpeg-go's Probe doesn't accept a
// context, so ctx is only honored indirectly through the caller's own
// cancellation checks between files.
func (FFmpegProvider) ProbeFile(ctx context.Context, path string) (Probe, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return Probe{}, fmt.Errorf("video: probe %s: %w", path, err)
	}

	var out ffprobeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Probe{}, fmt.Errorf("video: parse probe output for %s: %w", path, err)
	}

	p := Probe{}
	if d, err := strconv.ParseFloat(out.Format.DurationStr, 64); err == nil {
		p.DurationSeconds = d
	}
	if br, err := strconv.ParseInt(out.Format.BitRateStr, 10, 64); err == nil {
		p.BitRateBPS = br
	}
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			p.Width = s.Width
			p.Height = s.Height
			p.CodecName = s.CodecName
			break
		}
	}

	if p.DurationSeconds <= 0 {
		return Probe{}, fmt.Errorf("video: %s: no usable duration in probe output", path)
	}
	return p, nil
}

// Keyframes extracts n frames from path at evenly-spaced timestamps (see
// SnapshotTimestamps), each decoded as a single still image and scaled to
// fit within maxDim x maxDim.
func (f FFmpegProvider) Keyframes(ctx context.Context, path string, n, maxDim int) ([]image.Image, error) {
	probe, err := f.ProbeFile(ctx, path)
	if err != nil {
		return nil, err
	}

	timestamps := SnapshotTimestamps(probe.DurationSeconds, n)
	frames := make([]image.Image, 0, len(timestamps))
	for _, ts := range timestamps {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		img, err := extractFrame(path, ts, maxDim)
		if err != nil {
			continue // one bad frame doesn't fail the whole file
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("video: %s: no keyframes could be extracted", path)
	}
	return frames, nil
}

func extractFrame(path string, seekSeconds float64, maxDim int) (image.Image, error) {
	var outBuf bytes.Buffer
	scale := fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", maxDim, maxDim)

	err := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": seekSeconds}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": 1,
			"vf":      scale,
			"format":  "image2",
			"vcodec":  "mjpeg",
		}).
		WithOutput(&outBuf).
		Run()
	if err != nil {
		return nil, fmt.Errorf("video: extract frame at %.2fs from %s: %w", seekSeconds, path, err)
	}

	img, err := jpeg.Decode(&outBuf)
	if err != nil {
		return nil, fmt.Errorf("video: decode extracted frame from %s: %w", path, err)
	}
	return img, nil
}
