package hashing

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"lukechampine.com/blake3"
)

func TestDigestMatchesReferenceImplementations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := make([]byte, 3*bufSize+17) // spans several buffer fills
	for i := range content {
		content[i] = byte(i * 7)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	h := New()
	got, err := h.Digest(path)
	if err != nil {
		t.Fatal(err)
	}

	wantSHA := sha256.Sum256(content)
	if got.SHA256 != wantSHA {
		t.Errorf("sha256 mismatch")
	}

	wantB3 := blake3.Sum256(content)
	if got.BLAKE3 != wantB3 {
		t.Errorf("blake3 mismatch")
	}
}

func TestDigestTwoIdenticalFilesMatch(t *testing.T) {
	dir := t.TempDir()
	content := []byte("identical content for duplicate detection")
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b", "a.jpg")
	if err := os.MkdirAll(filepath.Dir(b), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(a, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, content, 0o644); err != nil {
		t.Fatal(err)
	}

	h := New()
	da, err := h.Digest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := h.Digest(b)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Errorf("expected identical digests for identical content")
	}
}

func TestDigestMissingFileIsError(t *testing.T) {
	h := New()
	if _, err := h.Digest(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
