package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/mixingcompass/internal/models"
)

type recordingSink struct {
	mu       sync.Mutex
	imported []string
	removed  []string
}

func (s *recordingSink) ImportFile(_ context.Context, path string) (*models.ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imported = append(s.imported, path)
	return &models.ImportSummary{Files: 1, Imported: 1}, nil
}

func (s *recordingSink) RemoveFile(_ context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, path)
	return 1, nil
}

func (s *recordingSink) snapshot() (imported, removed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.imported...), append([]string(nil), s.removed...)
}

func hasSuffix(paths []string, suffix string) bool {
	return slices.ContainsFunc(paths, func(p string) bool { return strings.HasSuffix(p, suffix) })
}

func startWatcher(t *testing.T, dir string, sink Sink, opts ...Option) *Watcher {
	t.Helper()
	opts = append([]Option{WithExtensions([]string{".csv", ".xlsx"}), WithDebounce(50 * time.Millisecond)}, opts...)
	w := New([]string{dir}, sink, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_importsChangedTable(t *testing.T) {
	dir := t.TempDir()
	sink := &recordingSink{}
	startWatcher(t, dir, sink)

	path := filepath.Join(dir, "solvents.csv")
	// Several writes inside the quiet period collapse into one import.
	for i := 0; i < 3; i++ {
		if err := writeFile(path, "Solvent,delta_d,delta_p,delta_h\nWater,15.5,16.0,42.3\n"); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(dir, "notes.txt"), "ignored"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "~$solvents.xlsx"), "lock"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	imported, _ := sink.snapshot()
	if len(imported) != 1 || !strings.HasSuffix(imported[0], "solvents.csv") {
		t.Errorf("imported = %v, want exactly solvents.csv once", imported)
	}
}

func TestWatcher_removesDeletedTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.csv")
	if err := writeFile(path, "Solvent,delta_d,delta_p,delta_h\n"); err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	startWatcher(t, dir, sink)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	_, removed := sink.snapshot()
	if !hasSuffix(removed, "old.csv") {
		t.Errorf("removed = %v, want old.csv", removed)
	}
}

func TestWatcher_newDirectoryTablesImported(t *testing.T) {
	dir := t.TempDir()
	sink := &recordingSink{}
	startWatcher(t, dir, sink)

	nested := filepath.Join(dir, "lab", "2024")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "deep.csv"), "Solvent,delta_d,delta_p,delta_h\n"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)

	imported, _ := sink.snapshot()
	if !hasSuffix(imported, "deep.csv") {
		t.Errorf("imported = %v, want deep.csv", imported)
	}
}

func TestWatcher_Start_createsMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data", "tables")
	startWatcher(t, root, &recordingSink{})
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root should exist after Start: %v", err)
	}
}

func TestWatcher_AddRemoveDirectory(t *testing.T) {
	dir := t.TempDir()
	extra := t.TempDir()
	if err := writeFile(filepath.Join(extra, "existing.csv"), "Solvent,delta_d,delta_p,delta_h\n"); err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	w := startWatcher(t, dir, sink)

	if err := w.AddDirectory(extra, true); err != nil {
		t.Fatal(err)
	}
	// Adding twice is a no-op.
	if err := w.AddDirectory(extra, false); err != nil {
		t.Fatal(err)
	}
	if got := w.Directories(); len(got) != 2 {
		t.Fatalf("Directories() = %v, want 2 entries", got)
	}
	time.Sleep(300 * time.Millisecond)
	imported, _ := sink.snapshot()
	if !hasSuffix(imported, "existing.csv") {
		t.Errorf("imported = %v, want existing.csv", imported)
	}

	if err := w.RemoveDirectory(extra); err != nil {
		t.Fatal(err)
	}
	if got := w.Directories(); len(got) != 1 || got[0] != filepath.Clean(dir) {
		t.Errorf("Directories() after remove = %v, want [%s]", got, dir)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, &recordingSink{})
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !w.Running() {
		t.Fatal("Running() = false after Start")
	}
	w.Stop()
	w.Stop()
	if w.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.csv", []string{".csv"}, true},
		{"/a/b.XLSX", []string{".xlsx"}, true},
		{"/a/b.csv", []string{"csv"}, true},
		{"/a/b.txt", []string{".csv"}, false},
		{"/a/b", nil, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.csv", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
		{"/tmp/a", "/tmp/ab", false},
	}
	for _, tt := range tests {
		if got := inDir(tt.dir, tt.path); got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
