package media

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractImageMetaNoExifLeavesExifFieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.png")
	// Minimal 1x1 PNG, no EXIF chunk.
	png := []byte{
		0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
		0, 0, 0, 0xd, 'I', 'H', 'D', 'R',
		0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0,
		0x1f, 0x15, 0xc4, 0x89,
		0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xae, 0x42, 0x60, 0x82,
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatal(err)
	}

	meta := ExtractImageMeta(path)
	if meta.CameraMake != "" || meta.TakenAt != nil {
		t.Errorf("expected zero-value EXIF fields for non-EXIF file, got %+v", meta)
	}
}

func TestExtractImageMetaMissingFileReturnsZeroValue(t *testing.T) {
	meta := ExtractImageMeta(filepath.Join(t.TempDir(), "missing.jpg"))
	if meta.Width != 0 || meta.Height != 0 {
		t.Errorf("expected zero-value meta for missing file, got %+v", meta)
	}
}

func TestMarshalMetadataRoundTrips(t *testing.T) {
	v := VideoMeta{DurationSeconds: 12.5, Width: 1920, Height: 1080}
	s := MarshalMetadata(v)

	var got VideoMeta
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestMarshalMetadataUnmarshalableValueReturnsEmptyString(t *testing.T) {
	if got := MarshalMetadata(func() {}); got != "" {
		t.Errorf("expected empty string for unmarshalable value, got %q", got)
	}
}
