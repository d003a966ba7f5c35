package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/resumatch/internal/models"
)

// SQLiteStorage implements CandidateStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		skills TEXT NOT NULL,
		education TEXT,
		experience TEXT,
		resume_path TEXT,
		index_position INTEGER NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_candidates_created_at ON candidates(created_at);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

const candidateColumns = `id, name, email, phone, skills, education, experience, resume_path, index_position, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var phone, education, experience, resumePath sql.NullString
	var skillsJSON string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &skillsJSON, &education, &experience,
		&resumePath, &c.IndexPosition, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Education = education.String
	c.Experience = experience.String
	c.ResumePath = resumePath.String
	if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills for %s: %w", c.ID, err)
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return &c, nil
}

// CreateCandidate inserts a candidate in its own transaction.
func (s *SQLiteStorage) CreateCandidate(ctx context.Context, c *models.Candidate, beforeCommit func() error) error {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, string(skillsJSON), c.Education, c.Experience,
		c.ResumePath, c.IndexPosition, c.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}

	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetCandidate returns a candidate by ID.
func (s *SQLiteStorage) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCandidatesByIDs returns the candidates with the given IDs keyed by ID.
// Unknown IDs are absent from the map.
func (s *SQLiteStorage) GetCandidatesByIDs(ctx context.Context, ids []string) (map[string]*models.Candidate, error) {
	out := make(map[string]*models.Candidate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

// ListCandidates returns candidates in insertion order with offset and limit.
func (s *SQLiteStorage) ListCandidates(ctx context.Context, offset, limit int) ([]*models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY index_position LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ListPositions returns (id, index_position) pairs ordered by position.
func (s *SQLiteStorage) ListPositions(ctx context.Context) ([]PositionEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, index_position FROM candidates ORDER BY index_position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PositionEntry
	for rows.Next() {
		var e PositionEntry
		if err := rows.Scan(&e.ID, &e.Position); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountCandidates returns the total number of candidates.
func (s *SQLiteStorage) CountCandidates(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&count)
	return count, err
}

// GetMeta returns the value stored under key, or "" when it was never set.
func (s *SQLiteStorage) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMeta stores value under key, replacing any previous value.
func (s *SQLiteStorage) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
