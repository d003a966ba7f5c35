package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/resumatch/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "candidates.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCandidate(id string, pos int) *models.Candidate {
	return &models.Candidate{
		ID:            id,
		Name:          "Name " + id,
		Email:         id + "@example.com",
		Phone:         "555-0100",
		Skills:        []string{"Go", "SQL"},
		Education:     "BSc",
		Experience:    "Engineer",
		ResumePath:    "/uploads/" + id + ".pdf",
		IndexPosition: pos,
	}
}

func TestSQLiteStorage_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testCandidate("c1", 0)
	if err := store.CreateCandidate(ctx, c, nil); err != nil {
		t.Fatal(err)
	}
	if c.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetCandidate(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != c.Name || got.Email != c.Email || got.Phone != c.Phone ||
		got.Education != c.Education || got.Experience != c.Experience ||
		got.ResumePath != c.ResumePath || got.IndexPosition != 0 {
		t.Errorf("got %+v", got)
	}
	if !reflect.DeepEqual(got.Skills, []string{"Go", "SQL"}) {
		t.Errorf("Skills = %v", got.Skills)
	}

	_, err = store.GetCandidate(ctx, "missing")
	if !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestSQLiteStorage_NilSkills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	c := testCandidate("c1", 0)
	c.Skills = nil
	if err := store.CreateCandidate(ctx, c, nil); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetCandidate(ctx, "c1")
	if got.Skills == nil || len(got.Skills) != 0 {
		t.Errorf("expected empty non-nil skills, got %#v", got.Skills)
	}
}

func TestSQLiteStorage_UniquePosition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.CreateCandidate(ctx, testCandidate("c1", 0), nil); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateCandidate(ctx, testCandidate("c2", 0), nil); err == nil {
		t.Error("expected error for duplicate index position")
	}
}

func TestSQLiteStorage_BeforeCommitFailureRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hookErr := errors.New("index save failed")
	err := store.CreateCandidate(ctx, testCandidate("c1", 0), func() error { return hookErr })
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	n, _ := store.CountCandidates(ctx)
	if n != 0 {
		t.Errorf("count after rollback = %d, want 0", n)
	}

	called := false
	if err := store.CreateCandidate(ctx, testCandidate("c1", 0), func() error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("beforeCommit not called")
	}
}

func TestSQLiteStorage_ListAndPositions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		if err := store.CreateCandidate(ctx, testCandidate(id, i), nil); err != nil {
			t.Fatal(err)
		}
	}

	positions, err := store.ListPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []PositionEntry{{"a", 0}, {"b", 1}, {"c", 2}}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("ListPositions = %v, want %v", positions, want)
	}

	list, err := store.ListCandidates(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "b" {
		t.Errorf("ListCandidates(1, 10) = %d items", len(list))
	}

	n, err := store.CountCandidates(ctx)
	if err != nil || n != 3 {
		t.Errorf("CountCandidates = %d, %v", n, err)
	}

	byID, err := store.GetCandidatesByIDs(ctx, []string{"c", "a", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byID) != 2 || byID["a"] == nil || byID["c"].IndexPosition != 2 {
		t.Errorf("GetCandidatesByIDs = %v", byID)
	}
	empty, err := store.GetCandidatesByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetCandidatesByIDs(nil) = %v, %v", empty, err)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CreateCandidate(ctx, testCandidate("a", 0), nil); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store2, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store2.Close()
	got, err := store2.GetCandidate(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestSQLiteStorage_Meta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.GetMeta(ctx, MetaEmbedder)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("unset key: got %q, want empty", got)
	}
	if err := store.SetMeta(ctx, MetaEmbedder, "hash"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetMeta(ctx, MetaEmbedder, "onnx:model.onnx"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store2, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store2.Close()
	got, err = store2.GetMeta(ctx, MetaEmbedder)
	if err != nil {
		t.Fatal(err)
	}
	if got != "onnx:model.onnx" {
		t.Errorf("after reopen: got %q, want %q", got, "onnx:model.onnx")
	}
}
