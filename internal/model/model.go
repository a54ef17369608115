// Package model holds the entity types shared by the fileset store, the
// scan engine and the duplicate-grouping query layer.
package model

import "time"

// RootKind distinguishes a plain folder scan root from a whole-drive scan root.
type RootKind string

const (
	RootKindFolder RootKind = "folder"
	RootKindDrive  RootKind = "drive"
)

// FilesetStatus tracks the lifecycle of a fileset artifact.
type FilesetStatus string

const (
	StatusInProgress FilesetStatus = "in_progress"
	StatusCompleted  FilesetStatus = "completed"
	StatusIncomplete FilesetStatus = "incomplete"
)

// DriveMetadata describes the physical volume a scan root lives on. All
// fields are best-effort and may be absent on platforms without a drive
// prober, or when the root isn't a recognizable mount.
type DriveMetadata struct {
	ID     string
	Label  string
	FSType string
}

// Scan is the single row describing one enumeration of a root directory.
// A fileset artifact holds exactly one Scan row, inserted once and never
// updated.
type Scan struct {
	ID        string // UUID
	CreatedAt time.Time
	RootKind  RootKind
	RootPath  string
	Drive     DriveMetadata
}

// FilesetMetadata is the at-most-one-row descriptive record for a fileset
// artifact.
type FilesetMetadata struct {
	Name        string
	Description string
	Notes       string
	AppVersion  string
	Status      FilesetStatus
	HostOS      string
}

// FileRecord is one scanned file. It is keyed by (ScanID, Path); ID is a
// store-assigned surrogate used as the foreign-key target for snapshots.
type FileRecord struct {
	ID         int64
	ScanID     string
	Path       string // relative to the scan root
	SizeBytes  int64
	ModifiedAt *time.Time

	BLAKE3 []byte // 32 bytes when present
	SHA256 []byte // 32 bytes when present

	AHash *uint64
	DHash *uint64
	PHash *uint64

	FileType       string // MIME type or extension-derived classification
	FFmpegMetadata string // JSON blob: video probe facts or image EXIF facts
}

// HasCryptoHash reports whether either cryptographic digest is set.
func (f FileRecord) HasCryptoHash() bool {
	return len(f.BLAKE3) > 0 || len(f.SHA256) > 0
}

// HasPerceptualHash reports whether any perceptual hash is set.
func (f FileRecord) HasPerceptualHash() bool {
	return f.AHash != nil || f.DHash != nil || f.PHash != nil
}

// SnapshotRecord is one decoded-and-re-encoded video keyframe, owned by a
// FileRecord via FileID.
type SnapshotRecord struct {
	FileID        int64
	SnapshotIndex int
	Image         []byte // snapshot bytes, see DESIGN.md for the chosen encoding
}

// DuplicateGroup is a virtual, query-time-only grouping of FileRecords that
// are either exact (digest-equal) or near (perceptual-distance) duplicates.
// It is never persisted.
type DuplicateGroup struct {
	Key               string // digest hex, or a synthetic cluster id for near matches
	Members           []FileRecord
	PossiblyIncomplete bool // set when a near-duplicate query hit its comparison cap
}
