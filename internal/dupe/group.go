// Package dupe discovers duplicate groups over a fileset's stored records.
// Per SPEC_FULL.md §3, groups are never persisted — they're recomputed
// on demand from the files table, exact matches via digest equality and
// near matches via Hamming-distance clustering.
package dupe

import (
	"encoding/hex"
	"sort"

	"github.com/snapsift/fileset/internal/model"
	"github.com/snapsift/fileset/internal/phash"
)

// ExactGroups clusters files sharing an identical non-null cryptographic
// digest — keyed by a record's blake3 when it has one, otherwise by its
// sha256, so a record with blake3 never groups with one that has only
// sha256. Singleton
// files are dropped. Groups are ordered largest-first, then by the path of
// their first member, for stable output.
func ExactGroups(files []model.FileRecord) []model.DuplicateGroup {
	byDigest := make(map[string][]model.FileRecord)
	for _, f := range files {
		key := digestKey(f)
		if key == "" {
			continue
		}
		byDigest[key] = append(byDigest[key], f)
	}

	var groups []model.DuplicateGroup
	for key, members := range byDigest {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })
		groups = append(groups, model.DuplicateGroup{Key: key, Members: members})
	}
	sortGroups(groups)
	return groups
}

func digestKey(f model.FileRecord) string {
	if len(f.BLAKE3) > 0 {
		return "blake3:" + hex.EncodeToString(f.BLAKE3)
	}
	if len(f.SHA256) > 0 {
		return "sha256:" + hex.EncodeToString(f.SHA256)
	}
	return ""
}

// defaultMaxComparisons bounds the O(n^2) near-duplicate pass. Past this
// many pairwise comparisons the result is marked PossiblyIncomplete rather
// than left to run unbounded — a fileset with tens of thousands of hashed
// images would otherwise turn a query into a multi-minute scan.
const defaultMaxComparisons = 20_000_000

// Thresholds holds the three independently configurable Hamming-distance
// thresholds SPEC_FULL.md §4.6 names: Tahash, Tdhash, Tphash. A pair of files
// is a near match if ANY one of the three hash kinds both sides have
// computed falls within its own threshold — the thresholds are not
// interchangeable and are never collapsed into a single shared distance.
type Thresholds struct {
	AHash int
	DHash int
	PHash int
}

// NearGroups clusters files whose perceptual hashes fall within their
// respective thresholds' Hamming distance of each other.
func NearGroups(files []model.FileRecord, t Thresholds) []model.DuplicateGroup {
	return nearGroups(files, t, defaultMaxComparisons)
}

func nearGroups(files []model.FileRecord, t Thresholds, maxComparisons int) []model.DuplicateGroup {
	uf := newUnionFind(len(files))
	possiblyIncomplete := false

	comparisons := 0
outer:
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			if comparisons >= maxComparisons {
				possiblyIncomplete = true
				break outer
			}
			comparisons++

			if withinThreshold(files[i], files[j], t) {
				uf.union(i, j)
			}
		}
	}

	var groups []model.DuplicateGroup
	for _, members := range uf.groups() {
		recs := make([]model.FileRecord, len(members))
		for k, idx := range members {
			recs[k] = files[idx]
		}
		sort.Slice(recs, func(a, b int) bool { return recs[a].Path < recs[b].Path })
		groups = append(groups, model.DuplicateGroup{
			Key:                "near:" + recs[0].Path,
			Members:            recs,
			PossiblyIncomplete: possiblyIncomplete,
		})
	}
	sortGroups(groups)
	return groups
}

// withinThreshold reports whether a and b are a near match under ANY hash
// kind both sides have computed — each kind is checked independently
// against its own threshold and ORed together, so e.g. an over-threshold
// pHash distance doesn't mask an under-threshold dHash match.
func withinThreshold(a, b model.FileRecord, t Thresholds) bool {
	if a.AHash != nil && b.AHash != nil && phash.Hamming(*a.AHash, *b.AHash) <= t.AHash {
		return true
	}
	if a.DHash != nil && b.DHash != nil && phash.Hamming(*a.DHash, *b.DHash) <= t.DHash {
		return true
	}
	if a.PHash != nil && b.PHash != nil && phash.Hamming(*a.PHash, *b.PHash) <= t.PHash {
		return true
	}
	return false
}

func sortGroups(groups []model.DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		return groups[i].Members[0].Path < groups[j].Members[0].Path
	})
}
