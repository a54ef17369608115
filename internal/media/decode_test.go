package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeImageRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path, 40, 20)

	img, err := DecodeImage(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("unexpected bounds: %v", img.Bounds())
	}
}

func TestDecodeImageUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.heic")
	if err := os.WriteFile(path, []byte("not really heic"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImage(path); err == nil {
		t.Fatal("expected error for undecodable extension")
	}
}

func TestResizeFitDownscalesPreservingAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	dst := ResizeFit(src, 50, 50)
	if dst.Bounds().Dx() != 50 || dst.Bounds().Dy() != 25 {
		t.Errorf("got %v, want 50x25", dst.Bounds())
	}
}

func TestResizeFitNeverUpscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	dst := ResizeFit(src, 500, 500)
	if dst.Bounds().Dx() != 10 || dst.Bounds().Dy() != 10 {
		t.Errorf("expected unchanged bounds, got %v", dst.Bounds())
	}
}

func TestEncodeJPEGProducesDecodableOutput(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	b, err := EncodeJPEG(src, 75)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatal("expected non-empty JPEG bytes")
	}
}
