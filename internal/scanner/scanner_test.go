package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFileOfSize(t *testing.T, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}

func TestScanFiles_FindsAndSizes(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "a", "x.bin"), 1024)
	writeFileOfSize(t, filepath.Join(root, "a", "y.bin"), 2048)
	writeFileOfSize(t, filepath.Join(root, "b", "z.bin"), 3072)
	if err := os.MkdirAll(filepath.Join(root, "c"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	results, err := ScanFiles(nil, root, Options{Concurrency: 2, MaxDepth: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	var total int64
	for _, r := range results {
		total += r.Size
	}
	if total != 1024+2048+3072 {
		t.Fatalf("total size mismatch: got %d", total)
	}
	if results[0].Path != filepath.Join(root, "a", "x.bin") {
		t.Fatalf("results not sorted: %v", results[0].Path)
	}
}

func TestScanFiles_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "top.txt"), 1)
	writeFileOfSize(t, filepath.Join(root, "level1", "level2", "deep.txt"), 10)

	results, err := ScanFiles(nil, root, Options{MaxDepth: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result with MaxDepth=0, got %d", len(results))
	}

	results, err = ScanFiles(nil, root, Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results with MaxDepth=2, got %d", len(results))
	}
}

func TestScanFiles_ExcludeHiddenAndExtensions(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "a", "keep.pdf"), 10)
	writeFileOfSize(t, filepath.Join(root, "a", "skip.txt"), 10)
	writeFileOfSize(t, filepath.Join(root, "b", "other.pdf"), 10)
	writeFileOfSize(t, filepath.Join(root, ".git", "config.pdf"), 10)

	results, err := ScanFiles(nil, root, Options{MaxDepth: -1, Excludes: []string{"b"}, Extensions: []string{"PDF"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %v", len(results), results)
	}
	if filepath.Base(results[0].Path) != "keep.pdf" {
		t.Fatalf("unexpected file: %s", results[0].Path)
	}

	results, err = ScanFiles(nil, root, Options{MaxDepth: -1, ShowHidden: true, Extensions: []string{".pdf"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results with hidden files, got %d", len(results))
	}
}

func TestScanFilesStream_Cancel(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFileOfSize(t, filepath.Join(root, "d", string(rune('a'+i))+".bin"), 1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	out, errCh := ScanFilesStream(ctx, root, Options{Concurrency: 1, MaxDepth: -1})
	<-out
	cancel()
	for range out {
	}
	if err := <-errCh; err != nil {
		t.Fatalf("cancelled scan reported %v", err)
	}
	if _, ok := <-errCh; ok {
		t.Fatal("errCh not closed")
	}
}

func TestScanFilesStream_CancelWhileWalking(t *testing.T) {
	root := t.TempDir()
	for d := 0; d < 10; d++ {
		for i := 0; i < 50; i++ {
			writeFileOfSize(t, filepath.Join(root, string(rune('a'+d)), string(rune('a'+i%26))+string(rune('a'+i/26))+".bin"), 1)
		}
	}
	for round := 0; round < 20; round++ {
		ctx, cancel := context.WithCancel(context.Background())
		out, errCh := ScanFilesStream(ctx, root, Options{Concurrency: 4, MaxDepth: -1})
		<-out
		cancel()
		for range out {
		}
		// errCh is only written once the walker has returned
		for range errCh {
		}
	}
}
