package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/models"
)

type fakeIngester struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeIngester) IngestDiscovered(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	return "cand-" + filepath.Base(path), nil
}

func (f *fakeIngester) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}

func TestInbox_ProcessRemovesIngestedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	if err := writeFile(path, "Jane Doe\njane@example.com"); err != nil {
		t.Fatal(err)
	}
	ing := &fakeIngester{}
	in := NewInbox(config.InboxConfig{Directories: []string{dir}}, ing)
	id, err := in.Process(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if id != "cand-cv.txt" {
		t.Errorf("id = %q", id)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("inbox file should be gone: %v", err)
	}
}

func TestInbox_ProcessKeepsFailedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	if err := writeFile(path, "no contact details"); err != nil {
		t.Fatal(err)
	}
	ing := &fakeIngester{err: models.NewValidationError("email", "is required")}
	in := NewInbox(config.InboxConfig{Directories: []string{dir}}, ing)
	if _, err := in.Process(context.Background(), path); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("failed file should stay in the inbox: %v", err)
	}
}

func TestInbox_ProcessMissingFile(t *testing.T) {
	ing := &fakeIngester{}
	in := NewInbox(config.InboxConfig{}, ing)
	if _, err := in.Process(context.Background(), filepath.Join(t.TempDir(), "gone.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if ing.count() != 0 {
		t.Error("missing file was ingested")
	}
}

func TestInbox_StartIngestsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.txt")
	if err := writeFile(existing, "x"); err != nil {
		t.Fatal(err)
	}
	ing := &fakeIngester{}
	in := NewInbox(config.InboxConfig{Directories: []string{dir}, Extensions: []string{".txt"}}, ing,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := in.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer in.Stop()

	if !waitFor(t, func() bool { return ing.count() >= 1 }) {
		t.Fatal("existing file was not ingested")
	}
	fresh := filepath.Join(dir, "new.txt")
	if err := writeFile(fresh, "y"); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool {
		_, err := os.Stat(fresh)
		return os.IsNotExist(err)
	}) {
		t.Error("new inbox file was not ingested and removed")
	}
	if got := in.Directories(); len(got) != 1 || got[0] != dir {
		t.Errorf("Directories() = %v", got)
	}
}
