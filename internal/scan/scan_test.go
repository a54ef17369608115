package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapsift/fileset/internal/model"
	"github.com/snapsift/fileset/internal/video"
)

func TestEngineRunEndToEnd(t *testing.T) {
	root := buildTestTree(t)
	st := openTestStoreForScan(t)
	if err := st.InsertScan(model.Scan{ID: "scan-1", RootKind: model.RootKindFolder, RootPath: root}); err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(st, video.NoopProvider{})
	cfg := Config{Root: root, HashFiles: true, Workers: 2}

	var snapshots []Snapshot
	err := engine.Run(context.Background(), "scan-1", cfg, func(s Snapshot) {
		snapshots = append(snapshots, s)
	})
	if err != nil {
		t.Fatal(err)
	}

	files, err := st.ListFiles(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files persisted, got %d", len(files))
	}
	for _, f := range files {
		if len(f.BLAKE3) == 0 {
			t.Errorf("expected %s to have a blake3 digest", f.Path)
		}
	}
}

func TestEngineRunIsCancellable(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 500; i++ {
		p := filepath.Join(root, "file"+string(rune('a'+i%26))+string(rune(i)))
		_ = os.WriteFile(p, []byte("some content to hash"), 0o644)
	}

	st := openTestStoreForScan(t)
	engine := NewEngine(st, video.NoopProvider{})
	cfg := Config{Root: root, HashFiles: true, Workers: 2}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := engine.Run(ctx, "scan-1", cfg, nil)
	if err == nil {
		t.Log("scan completed before the timeout fired; tree was small enough, not a failure")
	}
}
