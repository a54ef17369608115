// Package store persists a fileset to a single self-contained SQLite
// database file — the "fileset artifact" SPEC_FULL.md §4 describes. One
// store is opened per artifact; there is no cross-fileset index.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/snapsift/fileset/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the fileset's SQLite database. The write connection is
// limited to one (db.SetMaxOpenConns(1)) so batched writer commits never
// collide under WAL; reads go through a separate pooled connection so
// duplicate-group queries don't block the active scan's writer.
type Store struct {
	write *sql.DB
	read  *sql.DB
}

// Open opens (or creates) the fileset database at path, applies the WAL
// PRAGMAs, and runs pending migrations.
func Open(path string) (*Store, error) {
	write, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	write.SetMaxOpenConns(1)
	if err := applyPragmas(write, writePragmas); err != nil {
		write.Close()
		return nil, err
	}

	if err := runMigrations(write); err != nil {
		write.Close()
		return nil, err
	}

	read, err := sql.Open("sqlite", path)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("store: open read pool %q: %w", path, err)
	}
	read.SetMaxOpenConns(4)
	if err := applyPragmas(read, readPragmas); err != nil {
		write.Close()
		read.Close()
		return nil, err
	}

	return &Store{write: write, read: read}, nil
}

var writePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -131072",
}

var readPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA query_only = ON",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA cache_size = -131072",
}

func applyPragmas(db *sql.DB, pragmas []string) error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: goose set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("store: goose up: %w", err)
	}
	return nil
}

// Close closes both the write and read connections.
func (s *Store) Close() error {
	werr := s.write.Close()
	rerr := s.read.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// InsertScan records the single scan this fileset artifact was built from.
func (s *Store) InsertScan(scan model.Scan) error {
	_, err := s.write.Exec(
		`INSERT INTO scans (id, created_at_secs, root_kind, root_path, drive_id, drive_label, drive_fs_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.CreatedAt.Unix(), string(scan.RootKind), scan.RootPath,
		nullableString(scan.Drive.ID), nullableString(scan.Drive.Label), nullableString(scan.Drive.FSType),
	)
	if err != nil {
		return fmt.Errorf("store: insert scan %s: %w", scan.ID, err)
	}
	return nil
}

// SetFilesetMetadata upserts the single fileset_metadata row.
func (s *Store) SetFilesetMetadata(meta model.FilesetMetadata) error {
	_, err := s.write.Exec(
		`INSERT INTO fileset_metadata (id, name, description, notes, app_version, status, host_os)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name,
		   description=excluded.description,
		   notes=excluded.notes,
		   app_version=excluded.app_version,
		   status=excluded.status,
		   host_os=excluded.host_os`,
		meta.Name, meta.Description, meta.Notes, meta.AppVersion, string(meta.Status), meta.HostOS,
	)
	if err != nil {
		return fmt.Errorf("store: set fileset metadata: %w", err)
	}
	return nil
}

// GetFilesetMetadata reads back the single fileset_metadata row. Returns the
// zero value, no error, if it hasn't been set yet.
func (s *Store) GetFilesetMetadata() (model.FilesetMetadata, error) {
	var m model.FilesetMetadata
	var status string
	row := s.read.QueryRow(`SELECT name, description, notes, app_version, status, host_os FROM fileset_metadata WHERE id = 1`)
	err := row.Scan(&m.Name, &m.Description, &m.Notes, &m.AppVersion, &status, &m.HostOS)
	if err == sql.ErrNoRows {
		return model.FilesetMetadata{}, nil
	}
	if err != nil {
		return model.FilesetMetadata{}, fmt.Errorf("store: get fileset metadata: %w", err)
	}
	m.Status = model.FilesetStatus(status)
	return m, nil
}

// SaveSetting upserts a single key in the settings table.
func (s *Store) SaveSetting(key, value string) error {
	_, err := s.write.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: save setting %q: %w", key, err)
	}
	return nil
}

// LoadSettings returns every settings row as a key→value map.
func (s *Store) LoadSettings() (map[string]string, error) {
	rows, err := s.read.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("store: load settings: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("store: scan setting row: %w", err)
		}
		m[k] = v
	}
	return m, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
