// Package video extracts representative snapshot frames from video files.
// Decoding a video container is an external concern (SPEC_FULL.md §1) —
// this package defines the seam (KeyframeProvider) the scan pipeline calls
// through, plus a no-op default for environments without a decoder and a
// concrete adapter that shells out to ffmpeg.
package video

import (
	"context"
	"image"
)

// Probe holds the subset of a video container's properties the snapshot
// timestamp calculation and stored metadata need.
type Probe struct {
	DurationSeconds float64
	Width           int
	Height          int
	CodecName       string
	BitRateBPS      int64
}

// KeyframeProvider extracts n evenly-spaced snapshot frames from a video
// file, each scaled so neither dimension exceeds maxDim. Implementations
// that have no working decoder (NoopProvider) return ErrUnavailable rather
// than a partial result, so callers can distinguish "no video support here"
// from "this particular file failed".
type KeyframeProvider interface {
	ProbeFile(ctx context.Context, path string) (Probe, error)
	Keyframes(ctx context.Context, path string, n, maxDim int) ([]image.Image, error)
}

// ErrUnavailable is returned by a KeyframeProvider that has no way to decode
// video on this build (no ffmpeg binary, unsupported platform, etc).
type errUnavailable struct{}

func (errUnavailable) Error() string { return "video: keyframe extraction unavailable" }

// ErrUnavailable is the sentinel errors.Is target for errUnavailable.
var ErrUnavailable error = errUnavailable{}

// NoopProvider is the default KeyframeProvider: it never extracts frames.
// Configurations that don't enable video snapshot capture, or environments
// where no decoder is wired in, use this so the scan pipeline can treat
// "video support disabled" and "video support enabled" identically at the
// call site — the difference is only which provider was constructed.
type NoopProvider struct{}

func (NoopProvider) ProbeFile(ctx context.Context, path string) (Probe, error) {
	return Probe{}, ErrUnavailable
}

func (NoopProvider) Keyframes(ctx context.Context, path string, n, maxDim int) ([]image.Image, error) {
	return nil, ErrUnavailable
}
