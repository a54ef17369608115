// Package media classifies scanned files by type and extracts the
// best-effort metadata blob the spec's FileRecord.FFmpegMetadata field
// carries (§4.8 of SPEC_FULL.md).
package media

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the broad classification a FileRecord's FileType is derived from.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".tif": true,
	".heic": true, ".heif": true, ".avif": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
}

var documentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true,
	".xlsx": true, ".ppt": true, ".pptx": true, ".txt": true,
	".odt": true, ".ods": true, ".odp": true,
}

// KindByExtension classifies purely by file extension. It never touches the
// filesystem, so it's also used as the magic-byte detector's fallback.
func KindByExtension(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	case documentExts[ext]:
		return KindDocument
	default:
		return KindOther
	}
}

// Detect classifies path by magic bytes first, falling back to extension
// when sniffing is inconclusive (unreadable file, or a signature the
// sniffer reports only as application/octet-stream). This
// implements SPEC_FULL.md §4.5 step 2, "classify by extension/magic".
// It returns the MIME type string the store persists as FileRecord.FileType.
func Detect(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err == nil && mt != nil && mt.String() != "application/octet-stream" {
		return mt.String()
	}

	switch KindByExtension(path) {
	case KindImage:
		return "image/" + strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	case KindVideo:
		return "video/" + strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	case KindDocument:
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}

// KindOf classifies path for pipeline routing (does this file need image
// decoding, video keyframe extraction, or neither). Magic-byte detection is
// skipped here deliberately — the scan engine's hot path only needs the
// cheap extension check to decide which expensive step to run next; the
// authoritative FileType classification (Detect, above) still runs once per
// file for the stored record.
func KindOf(path string) Kind {
	return KindByExtension(path)
}
