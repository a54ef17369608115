package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/snapsift/fileset/internal/model"
)

func unixPtr(secs int64) *time.Time {
	t := time.Unix(secs, 0).UTC()
	return &t
}

// UpsertFile inserts or updates one file row, keyed on (scan_id, path).
// Null digest, perceptual-hash, file_type and metadata fields in rec never
// clobber a previously stored value — a rescan that only recomputes the
// crypto digest, say, must not erase a perceptual hash computed on an
// earlier pass. size_bytes and modified_at_secs are always replaced, even
// when rec.ModifiedAt is nil. Returns the row's surrogate id.
func (s *Store) UpsertFile(rec model.FileRecord) (int64, error) {
	var modifiedAt any
	if rec.ModifiedAt != nil {
		modifiedAt = rec.ModifiedAt.Unix()
	}

	row := s.write.QueryRow(
		`INSERT INTO files (scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(scan_id, path) DO UPDATE SET
		   size_bytes=excluded.size_bytes,
		   modified_at_secs=excluded.modified_at_secs,
		   blake3=COALESCE(excluded.blake3, files.blake3),
		   sha256=COALESCE(excluded.sha256, files.sha256),
		   ahash=COALESCE(excluded.ahash, files.ahash),
		   dhash=COALESCE(excluded.dhash, files.dhash),
		   phash=COALESCE(excluded.phash, files.phash),
		   file_type=COALESCE(excluded.file_type, files.file_type),
		   metadata_json=COALESCE(excluded.metadata_json, files.metadata_json)
		 RETURNING id`,
		rec.ScanID, rec.Path, rec.SizeBytes, modifiedAt,
		nullableBytes(rec.BLAKE3), nullableBytes(rec.SHA256),
		nullableHash(rec.AHash), nullableHash(rec.DHash), nullableHash(rec.PHash),
		nullableString(rec.FileType), nullableString(rec.FFmpegMetadata),
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("store: upsert file %s/%s: %w", rec.ScanID, rec.Path, err)
	}
	return id, nil
}

// UpsertFileTx is UpsertFile run against an open transaction, for the
// scan writer's batched commits.
func UpsertFileTx(tx *sql.Tx, rec model.FileRecord) (int64, error) {
	var modifiedAt any
	if rec.ModifiedAt != nil {
		modifiedAt = rec.ModifiedAt.Unix()
	}

	row := tx.QueryRow(
		`INSERT INTO files (scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(scan_id, path) DO UPDATE SET
		   size_bytes=excluded.size_bytes,
		   modified_at_secs=excluded.modified_at_secs,
		   blake3=COALESCE(excluded.blake3, files.blake3),
		   sha256=COALESCE(excluded.sha256, files.sha256),
		   ahash=COALESCE(excluded.ahash, files.ahash),
		   dhash=COALESCE(excluded.dhash, files.dhash),
		   phash=COALESCE(excluded.phash, files.phash),
		   file_type=COALESCE(excluded.file_type, files.file_type),
		   metadata_json=COALESCE(excluded.metadata_json, files.metadata_json)
		 RETURNING id`,
		rec.ScanID, rec.Path, rec.SizeBytes, modifiedAt,
		nullableBytes(rec.BLAKE3), nullableBytes(rec.SHA256),
		nullableHash(rec.AHash), nullableHash(rec.DHash), nullableHash(rec.PHash),
		nullableString(rec.FileType), nullableString(rec.FFmpegMetadata),
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("store: upsert file %s/%s: %w", rec.ScanID, rec.Path, err)
	}
	return id, nil
}

// UpsertSnapshotTx inserts or replaces one snapshot image for a file, run
// against an open transaction.
func UpsertSnapshotTx(tx *sql.Tx, snap model.SnapshotRecord) error {
	_, err := tx.Exec(
		`INSERT INTO snapshots (file_id, snapshot_index, image_avif) VALUES (?, ?, ?)
		 ON CONFLICT(file_id, snapshot_index) DO UPDATE SET image_avif=excluded.image_avif`,
		snap.FileID, snap.SnapshotIndex, snap.Image,
	)
	if err != nil {
		return fmt.Errorf("store: upsert snapshot %d/%d: %w", snap.FileID, snap.SnapshotIndex, err)
	}
	return nil
}

// BeginWrite starts a transaction on the write connection, for the scan
// writer's batched commits.
func (s *Store) BeginWrite() (*sql.Tx, error) {
	return s.write.Begin()
}

// GetSnapshot reads one snapshot image back by file id and index.
func (s *Store) GetSnapshot(fileID int64, index int) ([]byte, error) {
	var img []byte
	err := s.read.QueryRow(
		`SELECT image_avif FROM snapshots WHERE file_id = ? AND snapshot_index = ?`,
		fileID, index,
	).Scan(&img)
	if err != nil {
		return nil, fmt.Errorf("store: get snapshot %d/%d: %w", fileID, index, err)
	}
	return img, nil
}

// sqlLimit turns a non-positive limit into SQLite's "no limit" sentinel, so
// callers that don't need pagination can pass 0 for the whole result set.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// ListFiles returns file rows belonging to the fileset's single scan,
// ordered by path. limit <= 0 means no limit; offset still skips that many
// rows either way.
func (s *Store) ListFiles(limit, offset int) ([]model.FileRecord, error) {
	rows, err := s.read.Query(
		`SELECT id, scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json
		 FROM files ORDER BY path LIMIT ? OFFSET ?`,
		sqlLimit(limit), offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list files: %w", err)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// ListFilesWithHashes returns file rows that have at least one perceptual
// hash computed — the input set for near-duplicate grouping.
func (s *Store) ListFilesWithHashes(limit, offset int) ([]model.FileRecord, error) {
	rows, err := s.read.Query(
		`SELECT id, scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json
		 FROM files WHERE ahash IS NOT NULL OR dhash IS NOT NULL OR phash IS NOT NULL
		 ORDER BY path LIMIT ? OFFSET ?`,
		sqlLimit(limit), offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list files with hashes: %w", err)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// FindExactDuplicateGroups returns the files whose non-null blake3 digest is
// shared with at least one other row, ordered by digest then path. It keys
// on blake3 only: rows without a blake3 are never returned, even if their
// sha256 matches (dupe.ExactGroups does the sha256 fallback in memory).
func (s *Store) FindExactDuplicateGroups() ([]model.FileRecord, error) {
	rows, err := s.read.Query(
		`SELECT id, scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json
		 FROM files
		 WHERE blake3 IN (SELECT blake3 FROM files WHERE blake3 IS NOT NULL GROUP BY blake3 HAVING COUNT(*) > 1)
		 ORDER BY blake3, path`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: find exact duplicate groups: %w", err)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// ListFilesWithDuplicates is the paginated form of FindExactDuplicateGroups,
// per SPEC_FULL.md §4.4's list_files_with_duplicates(limit, offset) operation.
func (s *Store) ListFilesWithDuplicates(limit, offset int) ([]model.FileRecord, error) {
	rows, err := s.read.Query(
		`SELECT id, scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json
		 FROM files
		 WHERE blake3 IN (SELECT blake3 FROM files WHERE blake3 IS NOT NULL GROUP BY blake3 HAVING COUNT(*) > 1)
		 ORDER BY blake3, path LIMIT ? OFFSET ?`,
		sqlLimit(limit), offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list files with duplicates: %w", err)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// FindDirectMatchesByBLAKE3 returns every other file sharing fileID's blake3
// digest, per SPEC_FULL.md §4.4's find_direct_matches_by_blake3(file_id)
// operation. Returns an empty slice, no error, if fileID has no blake3 set.
func (s *Store) FindDirectMatchesByBLAKE3(fileID int64) ([]model.FileRecord, error) {
	var digest []byte
	err := s.read.QueryRow(`SELECT blake3 FROM files WHERE id = ?`, fileID).Scan(&digest)
	if err == sql.ErrNoRows || len(digest) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find direct matches: lookup %d: %w", fileID, err)
	}

	rows, err := s.read.Query(
		`SELECT id, scan_id, path, size_bytes, modified_at_secs, blake3, sha256, ahash, dhash, phash, file_type, metadata_json
		 FROM files WHERE blake3 = ? AND id != ? ORDER BY path`,
		digest, fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: find direct matches: %w", err)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

func scanFileRows(rows *sql.Rows) ([]model.FileRecord, error) {
	var out []model.FileRecord
	for rows.Next() {
		var rec model.FileRecord
		var modifiedAt sql.NullInt64
		var blake3, sha256 []byte
		var ahash, dhash, phash sql.NullInt64
		var fileType, metadataJSON sql.NullString

		if err := rows.Scan(
			&rec.ID, &rec.ScanID, &rec.Path, &rec.SizeBytes, &modifiedAt,
			&blake3, &sha256, &ahash, &dhash, &phash, &fileType, &metadataJSON,
		); err != nil {
			return nil, fmt.Errorf("store: scan file row: %w", err)
		}

		if modifiedAt.Valid {
			rec.ModifiedAt = unixPtr(modifiedAt.Int64)
		}
		rec.BLAKE3 = blake3
		rec.SHA256 = sha256
		rec.AHash = hashPtr(ahash)
		rec.DHash = hashPtr(dhash)
		rec.PHash = hashPtr(phash)
		rec.FileType = fileType.String
		rec.FFmpegMetadata = metadataJSON.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// nullableHash converts a perceptual hash to the signed 64-bit integer
// SQLite stores, reinterpreting bits rather than truncating the value.
func nullableHash(h *uint64) any {
	if h == nil {
		return nil
	}
	return int64(*h)
}

func hashPtr(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}
