// Package search indexes parsed resumes and ranks candidates against job descriptions.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/embedding"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/storage"
	"github.com/hyperjump/resumatch/internal/vector"
	"go.uber.org/zap"
)

// Engine owns the vector index and the candidate store and keeps them in step:
// candidate i always sits at row i of the index.
type Engine struct {
	store     storage.CandidateStore
	embedder  embedding.Embedder
	index     vector.VectorIndex
	indexPath string
	config    *config.EngineConfig
	logger    *zap.Logger

	mu sync.RWMutex
	// positions[i] is the id of the candidate at index row i.
	positions []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for load, reconcile and indexing events.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine loads the vector index from indexPath and the candidate positions from
// store, reconciles them, and returns a ready engine.
func NewEngine(
	ctx context.Context,
	store storage.CandidateStore,
	embedder embedding.Embedder,
	index vector.VectorIndex,
	indexPath string,
	cfg *config.EngineConfig,
	opts ...Option,
) (*Engine, error) {
	if embedder.Dimensions() != index.Dimensions() {
		return nil, fmt.Errorf("embedder dimension %d does not match vector index dimension %d",
			embedder.Dimensions(), index.Dimensions())
	}
	if cfg == nil {
		cfg = &config.EngineConfig{}
	}
	e := &Engine{
		store:     store,
		embedder:  embedder,
		index:     index,
		indexPath: indexPath,
		config:    cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.load(ctx); err != nil {
		return nil, err
	}
	e.logger.Info("search engine ready",
		zap.Int("candidates", len(e.positions)),
		zap.String("index_type", index.Type()),
		zap.String("reload_policy", e.reloadPolicy()))
	return e, nil
}

func (e *Engine) reloadPolicy() string {
	if e.config.ReloadPolicy == "" {
		return config.ReloadStartup
	}
	return e.config.ReloadPolicy
}

// load reads both halves from disk and rebuilds the position map. Index rows past
// the last committed candidate are left over from an interrupted IndexResume and
// are dropped. A non-empty store built by a different embedder is rejected.
// Caller must hold the write lock, or be the constructor.
func (e *Engine) load(ctx context.Context) error {
	if err := e.index.Load(e.indexPath); err != nil {
		return models.NewPersistenceError("load vector index", err)
	}
	entries, err := e.store.ListPositions(ctx)
	if err != nil {
		return models.NewPersistenceError("load candidate positions", err)
	}

	positions := make([]string, len(entries))
	for i, entry := range entries {
		if entry.Position != i {
			return models.NewPersistenceError("load candidate positions",
				fmt.Errorf("candidate %s has index position %d, expected %d", entry.ID, entry.Position, i))
		}
		positions[i] = entry.ID
	}
	if err := e.checkEmbedder(ctx, len(positions)); err != nil {
		return err
	}

	size := e.index.Size()
	switch {
	case len(positions) > size:
		return models.NewPersistenceError("reconcile",
			fmt.Errorf("%d candidates but vector index has %d rows", len(positions), size))
	case size > len(positions):
		e.logger.Warn("dropping uncommitted vector index rows",
			zap.Int("index_rows", size),
			zap.Int("candidates", len(positions)))
		if err := e.index.Truncate(len(positions)); err != nil {
			return models.NewPersistenceError("reconcile", err)
		}
		if err := e.index.Save(e.indexPath); err != nil {
			return models.NewPersistenceError("reconcile", err)
		}
	}

	e.positions = positions
	return nil
}

// checkEmbedder compares the configured embedder with the one recorded for the
// stored vectors. A store with no candidates adopts the configured embedder.
func (e *Engine) checkEmbedder(ctx context.Context, candidates int) error {
	want := e.embedder.Identity()
	stored, err := e.store.GetMeta(ctx, storage.MetaEmbedder)
	if err != nil {
		return models.NewPersistenceError("load embedder identity", err)
	}
	if stored == want {
		return nil
	}
	if stored != "" && candidates > 0 {
		return models.NewPersistenceError("load",
			fmt.Errorf("index was built with embedder %q but %q is configured; restore the embedding settings or rebuild the index",
				stored, want))
	}
	if err := e.store.SetMeta(ctx, storage.MetaEmbedder, want); err != nil {
		return models.NewPersistenceError("record embedder identity", err)
	}
	if stored != "" {
		e.logger.Info("empty index switched embedder", zap.String("from", stored), zap.String("to", want))
	}
	return nil
}

// BuildProfileText is the text embedded for a resume: labeled skills, education
// and experience in that order, or the raw text when none of them is present.
func BuildProfileText(rec *models.ResumeRecord) string {
	var parts []string
	if len(rec.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(rec.Skills, ", "))
	}
	if rec.Education != "" {
		parts = append(parts, "Education: "+rec.Education)
	}
	if rec.Experience != "" {
		parts = append(parts, "Experience: "+rec.Experience)
	}
	if len(parts) == 0 {
		return rec.RawText
	}
	return strings.Join(parts, " ")
}

// IndexResume embeds rec, appends it to the vector index and stores it as a new
// candidate. The candidate row and the rewritten index file are committed
// together: the index file is replaced inside the candidate transaction, and the
// transaction commit is what makes the new candidate visible.
func (e *Engine) IndexResume(ctx context.Context, rec *models.ResumeRecord) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reloadPolicy() == config.ReloadAlways {
		if err := e.load(ctx); err != nil {
			return "", err
		}
	}

	vec, err := e.embedder.Embed(ctx, BuildProfileText(rec))
	if err != nil {
		return "", fmt.Errorf("embedding failed: %w", err)
	}

	pos, err := e.index.Add(ctx, vec)
	if err != nil {
		return "", fmt.Errorf("vector index add failed: %w", err)
	}
	if pos != len(e.positions) {
		e.rollbackIndex(pos, false)
		return "", models.NewPersistenceError("index resume",
			fmt.Errorf("vector index returned position %d, expected %d", pos, len(e.positions)))
	}

	skills := make([]string, len(rec.Skills))
	copy(skills, rec.Skills)
	candidate := &models.Candidate{
		ID:            uuid.NewString(),
		Name:          rec.Name,
		Email:         rec.Email,
		Phone:         rec.Phone,
		Skills:        skills,
		Education:     rec.Education,
		Experience:    rec.Experience,
		ResumePath:    rec.ResumePath,
		IndexPosition: pos,
	}

	saved := false
	err = e.store.CreateCandidate(ctx, candidate, func() error {
		if err := e.index.Save(e.indexPath); err != nil {
			return fmt.Errorf("save vector index: %w", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		e.rollbackIndex(pos, saved)
		return "", models.NewPersistenceError("index resume", err)
	}

	e.positions = append(e.positions, candidate.ID)
	e.logger.Info("candidate indexed",
		zap.String("candidate_id", candidate.ID),
		zap.Int("index_position", pos),
		zap.Int("skills", len(candidate.Skills)))
	return candidate.ID, nil
}

// rollbackIndex drops rows from n on. When the index file was already rewritten
// it is saved again so the file matches the committed candidates.
func (e *Engine) rollbackIndex(n int, resave bool) {
	if err := e.index.Truncate(n); err != nil {
		e.logger.Error("vector index rollback failed", zap.Int("position", n), zap.Error(err))
		return
	}
	if resave {
		if err := e.index.Save(e.indexPath); err != nil {
			e.logger.Warn("vector index rollback not persisted; it will be reconciled on next load",
				zap.Error(err))
		}
	}
}

// Search ranks candidates against query. topK <= 0 uses the configured default;
// the result count is capped by the configured maximum and the number of candidates.
// Each MatchScore is the cosine similarity rescaled from [-1, 1] to [0, 1].
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]*models.CandidateMatch, error) {
	if e.reloadPolicy() == config.ReloadAlways {
		e.mu.Lock()
		defer e.mu.Unlock()
		if err := e.load(ctx); err != nil {
			return nil, err
		}
	} else {
		e.mu.RLock()
		defer e.mu.RUnlock()
	}

	matches := []*models.CandidateMatch{}
	size := e.index.Size()
	if size == 0 {
		return matches, nil
	}
	k := e.effectiveTopK(topK, size)

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	results, err := e.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if id, ok := e.positionID(r.Position); ok {
			ids = append(ids, id)
		}
	}
	byID, err := e.store.GetCandidatesByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewPersistenceError("search", err)
	}

	for _, r := range results {
		id, ok := e.positionID(r.Position)
		if !ok {
			e.logger.Warn("skipping search hit", zap.Error(models.NewIndexConsistencyError(r.Position)))
			continue
		}
		c, ok := byID[id]
		if !ok {
			e.logger.Warn("skipping search hit",
				zap.String("candidate_id", id),
				zap.Error(models.NewIndexConsistencyError(r.Position)))
			continue
		}
		matches = append(matches, c.PublicView(MatchScore(r.Score)))
	}
	return matches, nil
}

func (e *Engine) positionID(pos int) (string, bool) {
	if pos < 0 || pos >= len(e.positions) {
		return "", false
	}
	return e.positions[pos], true
}

func (e *Engine) effectiveTopK(topK, size int) int {
	k := topK
	if k <= 0 {
		k = e.config.DefaultTopK
		if k <= 0 {
			k = 10
		}
	}
	if e.config.MaxTopK > 0 && k > e.config.MaxTopK {
		k = e.config.MaxTopK
	}
	if k > size {
		k = size
	}
	return k
}

// MatchScore maps an inner product in [-1, 1] to [0, 1].
func MatchScore(innerProduct float64) float64 {
	s := (innerProduct + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Candidate returns the stored candidate with id.
func (e *Engine) Candidate(ctx context.Context, id string) (*models.Candidate, error) {
	return e.store.GetCandidate(ctx, id)
}

// Size returns the number of indexed candidates.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.positions)
}

// VectorIndexType returns the configured vector index implementation.
func (e *Engine) VectorIndexType() string {
	return e.index.Type()
}

// Close releases the vector index and the candidate store.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	indexErr := e.index.Close()
	storeErr := e.store.Close()
	if indexErr != nil {
		return indexErr
	}
	return storeErr
}
