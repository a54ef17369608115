// Package hashing computes the cryptographic digests the fileset store
// persists per file: BLAKE3 and SHA-256, both from a single streaming pass.
package hashing

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// bufSize matches the spec's "bounded buffer (≈128 KiB)" read size.
const bufSize = 128 * 1024

// Digest holds both cryptographic digests for one file, as raw bytes —
// never hex — matching what the store persists.
type Digest struct {
	BLAKE3 [32]byte
	SHA256 [32]byte
}

// Hasher streams a file once, feeding both hash states from the same reads.
type Hasher struct{}

// New returns a Hasher. It holds no state; one value is reused across
// workers.
func New() *Hasher {
	return &Hasher{}
}

// Digest streams path through both hash states in one pass. A failure to
// open or read the file is returned as-is; callers treat it as "skip, count
// as skipped" per the spec's per-file failure semantics.
func (h *Hasher) Digest(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing: open %s: %w", path, err)
	}
	defer f.Close()

	b3 := blake3.New(32, nil)
	s256 := sha256.New()
	w := io.MultiWriter(b3, s256)

	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		return Digest{}, fmt.Errorf("hashing: read %s: %w", path, err)
	}

	var d Digest
	copy(d.BLAKE3[:], b3.Sum(nil))
	copy(d.SHA256[:], s256.Sum(nil))
	return d, nil
}
