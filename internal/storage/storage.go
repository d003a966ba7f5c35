// Package storage persists candidate metadata alongside the vector index.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/resumatch/internal/models"
)

// ErrCandidateNotFound is returned when no candidate has the requested id.
var ErrCandidateNotFound = errors.New("candidate not found")

// MetaEmbedder is the meta key holding the identity of the embedder that produced
// the stored vectors.
const MetaEmbedder = "embedder"

// PositionEntry ties a candidate id to its vector index row.
type PositionEntry struct {
	ID       string
	Position int
}

// CandidateStore defines candidate persistence operations. Candidates are
// append-only: there is no update or delete.
type CandidateStore interface {
	// CreateCandidate inserts c. beforeCommit, when non-nil, runs inside the write
	// transaction after the row is inserted; if it fails the insert is rolled back.
	CreateCandidate(ctx context.Context, c *models.Candidate, beforeCommit func() error) error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetCandidatesByIDs(ctx context.Context, ids []string) (map[string]*models.Candidate, error)
	ListCandidates(ctx context.Context, offset, limit int) ([]*models.Candidate, error)

	// ListPositions returns every candidate's index position in ascending order.
	ListPositions(ctx context.Context) ([]PositionEntry, error)
	CountCandidates(ctx context.Context) (int64, error)

	// GetMeta and SetMeta hold index-wide settings such as the embedder identity.
	// GetMeta returns "" for a key that was never set.
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	Close() error
}
