package scan

import (
	"context"
	"fmt"

	"github.com/snapsift/fileset/internal/store"
)

// writeBatchSize is the number of files accumulated before the writer
// commits a transaction (the final batch of a scan may be smaller) — batching keeps SQLite's per-transaction
// fsync cost off the hot path of a scan with many small files.
const writeBatchSize = 64

// runWriter drains in, persisting file rows (and any snapshots) in batched
// transactions. It is the sole writer against the fileset database during a
// scan, matching SPEC_FULL.md §4.5's single-writer discipline. Returns once
// in is closed and every pending batch has been committed; ctx is not
// consulted, so on a cancelled scan the writer still commits every result
// it receives, and a cancelled scan never loses work it already paid to compute.
func runWriter(ctx context.Context, st *store.Store, progress *Progress, in <-chan result) error {
	batch := make([]result, 0, writeBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := writeBatch(st, batch); err != nil {
			return err
		}
		progress.FilesWritten.Add(int64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for r := range in {
		batch = append(batch, r)
		if len(batch) >= writeBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func writeBatch(st *store.Store, batch []result) error {
	tx, err := st.BeginWrite()
	if err != nil {
		return fmt.Errorf("scan: begin write batch: %w", err)
	}
	defer tx.Rollback()

	for _, r := range batch {
		id, err := store.UpsertFileTx(tx, r.file)
		if err != nil {
			return err
		}
		for _, snap := range r.snapshots {
			snap.FileID = id
			if err := store.UpsertSnapshotTx(tx, snap); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scan: commit write batch: %w", err)
	}
	return nil
}
