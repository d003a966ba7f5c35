package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/embedding"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/storage"
	"github.com/hyperjump/resumatch/internal/vector"
)

const testDims = 128

type testEnv struct {
	dir       string
	dbPath    string
	indexPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir:       dir,
		dbPath:    filepath.Join(dir, "candidates.db"),
		indexPath: filepath.Join(dir, "indices", "candidates.vec"),
	}
}

func (env *testEnv) open(t *testing.T, cfg *config.EngineConfig) *Engine {
	t.Helper()
	store, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	return env.openWithStore(t, store, cfg)
}

func (env *testEnv) openWithStore(t *testing.T, store storage.CandidateStore, cfg *config.EngineConfig) *Engine {
	t.Helper()
	idx, err := vector.NewMemoryIndex(testDims)
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		cfg = &config.EngineConfig{ReloadPolicy: config.ReloadStartup, DefaultTopK: 10, MaxTopK: 100}
	}
	e, err := NewEngine(context.Background(), store, embedding.NewHashEmbedder(testDims), idx, env.indexPath, cfg)
	if err != nil {
		_ = store.Close()
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func record(name string, skills ...string) *models.ResumeRecord {
	return &models.ResumeRecord{
		Name:       name,
		Email:      name + "@example.com",
		Skills:     skills,
		Education:  models.NotSpecified,
		Experience: models.NotSpecified,
		ResumePath: "/uploads/" + name + ".pdf",
	}
}

func TestEngine_PositionsAreSequential(t *testing.T) {
	env := newTestEnv(t)
	e := env.open(t, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := e.IndexResume(ctx, record(string(rune('a'+i)), "Go"))
		if err != nil {
			t.Fatalf("IndexResume #%d: %v", i, err)
		}
		ids = append(ids, id)
	}
	if e.Size() != 5 {
		t.Errorf("Size=%d, want 5", e.Size())
	}
	for i, id := range ids {
		c, err := e.Candidate(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if c.IndexPosition != i {
			t.Errorf("candidate %d has position %d", i, c.IndexPosition)
		}
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestEngine_SearchEmptyIndex(t *testing.T) {
	e := newTestEnv(t).open(t, nil)
	matches, err := e.Search(context.Background(), "senior go developer", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", matches)
	}
}

func TestEngine_SearchRanksMatchingCandidateFirst(t *testing.T) {
	e := newTestEnv(t).open(t, nil)
	ctx := context.Background()

	if _, err := e.IndexResume(ctx, record("ana", "Python", "Machine Learning", "TensorFlow", "Pandas")); err != nil {
		t.Fatal(err)
	}
	bob, err := e.IndexResume(ctx, record("bob", "Go", "Kubernetes", "Docker", "Terraform"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.IndexResume(ctx, record("cy", "Photoshop", "Illustrator", "Branding", "Typography")); err != nil {
		t.Fatal(err)
	}

	matches, err := e.Search(ctx, "Platform role: Go, Kubernetes, Docker and Terraform", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].ID != bob {
		t.Errorf("expected bob first, got %s", matches[0].Name)
	}
	for i, m := range matches {
		if m.MatchScore < 0 || m.MatchScore > 1 {
			t.Errorf("match %d score %f outside [0, 1]", i, m.MatchScore)
		}
		if i > 0 && m.MatchScore > matches[i-1].MatchScore {
			t.Errorf("scores not sorted: %f after %f", m.MatchScore, matches[i-1].MatchScore)
		}
	}
	if 1-matches[0].MatchScore >= 1-matches[1].MatchScore {
		t.Errorf("best match should be closest to 1: %f vs %f", matches[0].MatchScore, matches[1].MatchScore)
	}
}

func TestEngine_TopK(t *testing.T) {
	cfg := &config.EngineConfig{ReloadPolicy: config.ReloadStartup, DefaultTopK: 2, MaxTopK: 3}
	e := newTestEnv(t).open(t, cfg)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, err := e.IndexResume(ctx, record(name, "Go")); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		topK int
		want int
	}{
		{0, 2},
		{-1, 2},
		{1, 1},
		{3, 3},
		{50, 3},
	}
	for _, tt := range tests {
		matches, err := e.Search(ctx, "go", tt.topK)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != tt.want {
			t.Errorf("topK=%d: got %d matches, want %d", tt.topK, len(matches), tt.want)
		}
	}
}

func TestEngine_PersistReloadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	query := "data scientist with python and machine learning"

	e := env.open(t, nil)
	for _, rec := range []*models.ResumeRecord{
		record("ana", "Python", "Machine Learning"),
		record("bob", "Go", "Docker"),
		record("cy", "SQL", "Tableau"),
	} {
		if _, err := e.IndexResume(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	before, err := e.Search(ctx, query, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := env.open(t, nil)
	if reopened.Size() != 3 {
		t.Fatalf("Size after reload = %d, want 3", reopened.Size())
	}
	after, err := reopened.Search(ctx, query, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("results differ after reload:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestEngine_DropsOrphanIndexRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	e := env.open(t, nil)
	for _, name := range []string{"a", "b"} {
		if _, err := e.IndexResume(ctx, record(name, "Go")); err != nil {
			t.Fatal(err)
		}
	}
	// A row written to the index file whose candidate never committed.
	orphan := make([]float32, testDims)
	orphan[0] = 1
	if _, err := e.index.Add(ctx, orphan); err != nil {
		t.Fatal(err)
	}
	if err := e.index.Save(env.indexPath); err != nil {
		t.Fatal(err)
	}
	_ = e.Close()

	reopened := env.open(t, nil)
	if reopened.Size() != 2 || reopened.index.Size() != 2 {
		t.Fatalf("Size=%d index=%d, want 2", reopened.Size(), reopened.index.Size())
	}
	onDisk, _ := vector.NewMemoryIndex(testDims)
	if err := onDisk.Load(env.indexPath); err != nil {
		t.Fatal(err)
	}
	if onDisk.Size() != 2 {
		t.Errorf("index file has %d rows after reconcile, want 2", onDisk.Size())
	}
	id, err := reopened.IndexResume(ctx, record("c", "Go"))
	if err != nil {
		t.Fatal(err)
	}
	c, _ := reopened.Candidate(ctx, id)
	if c.IndexPosition != 2 {
		t.Errorf("new candidate position = %d, want 2", c.IndexPosition)
	}
}

func TestEngine_MissingIndexRowsIsPersistenceError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	e := env.open(t, nil)
	if _, err := e.IndexResume(ctx, record("a", "Go")); err != nil {
		t.Fatal(err)
	}
	_ = e.Close()

	empty, _ := vector.NewMemoryIndex(testDims)
	if err := empty.Save(env.indexPath); err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	idx, _ := vector.NewMemoryIndex(testDims)
	_, err = NewEngine(ctx, store, embedding.NewHashEmbedder(testDims), idx, env.indexPath, &config.EngineConfig{})
	if !errors.Is(err, models.ErrPersistence) {
		t.Errorf("expected persistence error, got %v", err)
	}
}

// flakyStore wraps a real store to inject commit failures and missing rows.
type flakyStore struct {
	storage.CandidateStore
	commitErr error
	hide      map[string]bool
}

func (f *flakyStore) CreateCandidate(ctx context.Context, c *models.Candidate, beforeCommit func() error) error {
	if f.commitErr == nil {
		return f.CandidateStore.CreateCandidate(ctx, c, beforeCommit)
	}
	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}
	return f.commitErr
}

func (f *flakyStore) GetCandidatesByIDs(ctx context.Context, ids []string) (map[string]*models.Candidate, error) {
	out, err := f.CandidateStore.GetCandidatesByIDs(ctx, ids)
	for id := range f.hide {
		delete(out, id)
	}
	return out, err
}

func TestEngine_FailedCommitRollsBackIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	store := &flakyStore{CandidateStore: base}
	e := env.openWithStore(t, store, nil)

	if _, err := e.IndexResume(ctx, record("a", "Go")); err != nil {
		t.Fatal(err)
	}
	store.commitErr = errors.New("disk full")
	_, err = e.IndexResume(ctx, record("b", "Rust"))
	if !errors.Is(err, models.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if e.Size() != 1 || e.index.Size() != 1 {
		t.Errorf("Size=%d index=%d after failed commit, want 1", e.Size(), e.index.Size())
	}
	onDisk, _ := vector.NewMemoryIndex(testDims)
	if err := onDisk.Load(env.indexPath); err != nil {
		t.Fatal(err)
	}
	if onDisk.Size() != 1 {
		t.Errorf("index file has %d rows, want 1", onDisk.Size())
	}

	store.commitErr = nil
	id, err := e.IndexResume(ctx, record("c", "Go"))
	if err != nil {
		t.Fatal(err)
	}
	c, _ := e.Candidate(ctx, id)
	if c.IndexPosition != 1 {
		t.Errorf("position after rollback = %d, want 1", c.IndexPosition)
	}
}

func TestEngine_SearchSkipsUnresolvedCandidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	store := &flakyStore{CandidateStore: base}
	e := env.openWithStore(t, store, nil)

	a, _ := e.IndexResume(ctx, record("a", "Go"))
	b, _ := e.IndexResume(ctx, record("b", "Go", "Rust"))
	store.hide = map[string]bool{a: true}

	matches, err := e.Search(ctx, "go", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != b {
		t.Errorf("expected only %s, got %+v", b, matches)
	}
}

func TestEngine_ReloadAlwaysSeesOtherWriters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	always := &config.EngineConfig{ReloadPolicy: config.ReloadAlways, DefaultTopK: 10, MaxTopK: 100}

	reader := env.open(t, always)
	writer := env.open(t, nil)
	id, err := writer.IndexResume(ctx, record("a", "Kafka"))
	if err != nil {
		t.Fatal(err)
	}

	matches, err := reader.Search(ctx, "kafka", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != id {
		t.Errorf("reader did not see new candidate: %+v", matches)
	}
}

// namedEmbedder is a hash embedder reporting a different identity, as a
// different model with the same dimension would.
type namedEmbedder struct {
	*embedding.HashEmbedder
	identity string
}

func (n namedEmbedder) Identity() string { return n.identity }

func TestNewEngine_EmbedderChangeIsPersistenceError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	e := env.open(t, nil)
	if _, err := e.IndexResume(ctx, record("a", "Go")); err != nil {
		t.Fatal(err)
	}
	_ = e.Close()

	store, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	idx, _ := vector.NewMemoryIndex(testDims)
	onnx := namedEmbedder{HashEmbedder: embedding.NewHashEmbedder(testDims), identity: "onnx:model.onnx"}
	_, err = NewEngine(ctx, store, onnx, idx, env.indexPath, &config.EngineConfig{})
	if !errors.Is(err, models.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if got, _ := store.GetMeta(ctx, storage.MetaEmbedder); got != embedding.ProviderHash {
		t.Errorf("recorded embedder changed to %q", got)
	}
}

func TestNewEngine_EmptyIndexAdoptsEmbedder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetMeta(ctx, storage.MetaEmbedder, "onnx:model.onnx"); err != nil {
		t.Fatal(err)
	}
	e := env.openWithStore(t, store, nil)
	if _, err := e.IndexResume(ctx, record("a", "Go")); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.GetMeta(ctx, storage.MetaEmbedder); got != embedding.ProviderHash {
		t.Errorf("recorded embedder = %q, want %q", got, embedding.ProviderHash)
	}
}

func TestEngine_ConcurrentIndexAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const n = 32

	e := env.open(t, nil)
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := e.IndexResume(ctx, record(fmt.Sprintf("c%02d", i), "Go", "Kafka")); err != nil {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, err := e.Search(ctx, "go developer", 5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if e.Size() != n {
		t.Fatalf("Size=%d, want %d", e.Size(), n)
	}
	_ = e.Close()

	store, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := store.ListPositions(ctx)
	_ = store.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Fatalf("stored %d candidates, want %d", len(entries), n)
	}
	seen := map[string]bool{}
	for i, entry := range entries {
		if entry.Position != i {
			t.Errorf("entry %d has position %d", i, entry.Position)
		}
		if seen[entry.ID] {
			t.Errorf("duplicate id %s", entry.ID)
		}
		seen[entry.ID] = true
	}

	reopened := env.open(t, nil)
	if reopened.Size() != n {
		t.Fatalf("Size after reload = %d, want %d", reopened.Size(), n)
	}
	matches, err := reopened.Search(ctx, "go kafka", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != n {
		t.Errorf("search after reload returned %d, want %d", len(matches), n)
	}
}

func TestNewEngine_DimensionMismatch(t *testing.T) {
	env := newTestEnv(t)
	store, err := storage.NewSQLiteStorage(env.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	idx, _ := vector.NewMemoryIndex(8)
	_, err = NewEngine(context.Background(), store, embedding.NewHashEmbedder(16), idx, env.indexPath, nil)
	if err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestBuildProfileText(t *testing.T) {
	tests := []struct {
		name string
		rec  *models.ResumeRecord
		want string
	}{
		{
			name: "all fields",
			rec:  &models.ResumeRecord{Skills: []string{"Go", "SQL"}, Education: "BSc", Experience: "Acme", RawText: "raw"},
			want: "Skills: Go, SQL Education: BSc Experience: Acme",
		},
		{
			name: "missing skills",
			rec:  &models.ResumeRecord{Education: models.NotSpecified, Experience: "Acme"},
			want: "Education: Not specified Experience: Acme",
		},
		{
			name: "raw text fallback",
			rec:  &models.ResumeRecord{RawText: "just some text"},
			want: "just some text",
		},
		{
			name: "nothing",
			rec:  &models.ResumeRecord{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildProfileText(tt.rec); got != tt.want {
				t.Errorf("BuildProfileText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_IndexEmptyRecord(t *testing.T) {
	e := newTestEnv(t).open(t, nil)
	if _, err := e.IndexResume(context.Background(), &models.ResumeRecord{Name: "blank", Email: "b@example.com"}); err != nil {
		t.Fatalf("IndexResume of empty record: %v", err)
	}
	matches, err := e.Search(context.Background(), "anything", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].MatchScore != 0.5 {
		t.Errorf("zero vector should score 0.5, got %+v", matches)
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{-1, 0},
		{0, 0.5},
		{1.0001, 1},
		{-1.5, 0},
	}
	for _, tt := range tests {
		if got := MatchScore(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MatchScore(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
