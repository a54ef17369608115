// Package phash computes the 64-bit perceptual hashes (aHash, dHash, pHash)
// the spec defines over decoded image content, and the Hamming-distance
// comparison duplicate grouping uses to cluster near-matches.
//
// The three algorithms (8x8 mean threshold, 9x8 gradient, 32x32 DCT median)
// are the same classical formulas a dedicated perceptual-hashing library
// already implements, so the hashing itself is delegated there rather than
// hand-rolled; this package only adapts that library's result type to the
// plain uint64 the fileset store persists.
package phash

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/corona10/goimagehash"
)

// Hashes holds the three perceptual hashes computed for one decoded image.
type Hashes struct {
	AHash uint64
	DHash uint64
	PHash uint64
}

// Compute runs all three perceptual hash algorithms over img.
func Compute(img image.Image) (Hashes, error) {
	a, err := goimagehash.AverageHash(img)
	if err != nil {
		return Hashes{}, fmt.Errorf("phash: ahash: %w", err)
	}
	d, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return Hashes{}, fmt.Errorf("phash: dhash: %w", err)
	}
	p, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Hashes{}, fmt.Errorf("phash: phash: %w", err)
	}
	return Hashes{
		AHash: a.GetHash(),
		DHash: d.GetHash(),
		PHash: p.GetHash(),
	}, nil
}

// Hamming returns the number of differing bits between two 64-bit hashes.
// Hamming(u, u) == 0 and Hamming(u, v) == Hamming(v, u) for all u, v.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
