package scan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/snapsift/fileset/internal/model"
	"github.com/snapsift/fileset/internal/store"
)

func openTestStoreForScan(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fileset.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRunWriterBatchesAndPersists(t *testing.T) {
	st := openTestStoreForScan(t)
	scan := model.Scan{ID: "scan-1", RootKind: model.RootKindFolder, RootPath: "/x"}
	if err := st.InsertScan(scan); err != nil {
		t.Fatal(err)
	}

	results := make(chan result, 10)
	for i := 0; i < 5; i++ {
		results <- result{file: model.FileRecord{
			ScanID:    "scan-1",
			Path:      string(rune('a' + i)),
			SizeBytes: int64(i),
		}}
	}
	close(results)

	progress := &Progress{}
	if err := runWriter(context.Background(), st, progress, results); err != nil {
		t.Fatal(err)
	}

	files, err := st.ListFiles(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 5 {
		t.Fatalf("expected 5 persisted files, got %d", len(files))
	}
	if progress.FilesWritten.Load() != 5 {
		t.Errorf("expected FilesWritten=5, got %d", progress.FilesWritten.Load())
	}
}

func TestRunWriterFlushesPartialBatchBelowThreshold(t *testing.T) {
	st := openTestStoreForScan(t)
	scan := model.Scan{ID: "scan-1", RootKind: model.RootKindFolder, RootPath: "/x"}
	if err := st.InsertScan(scan); err != nil {
		t.Fatal(err)
	}

	results := make(chan result, 1)
	results <- result{file: model.FileRecord{ScanID: "scan-1", Path: "only.jpg", SizeBytes: 1}}
	close(results)

	progress := &Progress{}
	if err := runWriter(context.Background(), st, progress, results); err != nil {
		t.Fatal(err)
	}

	files, err := st.ListFiles(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected the single buffered file to be flushed, got %d", len(files))
	}
}
