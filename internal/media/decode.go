package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// decodableExts are the image formats this process can decode without CGo —
// heic/heif/avif/bmp/tiff need a codec this corpus doesn't carry, so files
// with those extensions are classified as images but skipped for perceptual
// hashing and snapshot resizing.
var decodableExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// DecodeImage opens and decodes the image file at path using the decoder
// appropriate for its extension. Returns an error for anything this process
// can't decode, including extensions in imageExts that lack a pure-Go
// decoder here.
func DecodeImage(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !decodableExts[ext] {
		return nil, fmt.Errorf("media: no decoder for %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeImage(ext, f)
}

func decodeImage(ext string, r io.Reader) (image.Image, error) {
	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".webp":
		return webp.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}

// ResizeFit scales src to fit within dstW x dstH, preserving aspect ratio,
// using bilinear interpolation. It never upscales — an image that already
// fits is returned unchanged.
func ResizeFit(src image.Image, dstW, dstH int) image.Image {
	srcBounds := src.Bounds()
	srcW := srcBounds.Dx()
	srcH := srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return src
	}

	scaleW := float64(dstW) / float64(srcW)
	scaleH := float64(dstH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	if scale >= 1.0 {
		return src
	}

	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, srcBounds, draw.Over, nil)
	return dst
}

// EncodeJPEG encodes img as a JPEG at the given quality — the format this
// process uses for persisted snapshot bytes (see SPEC_FULL.md §4.5 and
// DESIGN.md for why AVIF encoding isn't available in this stack).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
