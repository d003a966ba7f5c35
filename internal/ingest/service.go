// Package ingest turns resume documents into indexed candidates.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"

	"github.com/hyperjump/resumatch/internal/extract"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/resume"
	"github.com/hyperjump/resumatch/internal/upload"
	"go.uber.org/zap"
)

// Parser reads a resume document into a record.
type Parser interface {
	Parse(ctx context.Context, path string) (*models.ResumeRecord, error)
}

// Indexer stores a parsed resume as a new candidate and returns its id.
type Indexer interface {
	IndexResume(ctx context.Context, rec *models.ResumeRecord) (string, error)
}

// Metadata is the caller-supplied contact information for a resume.
type Metadata struct {
	Name  string
	Email string
	Phone string
}

// Normalize trims and collapses whitespace in every field.
func (m Metadata) Normalize() Metadata {
	return Metadata{
		Name:  Preprocess(m.Name),
		Email: Preprocess(m.Email),
		Phone: Preprocess(m.Phone),
	}
}

// Validate requires a name and a well-formed email address.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return models.NewValidationError("name", "is required")
	}
	if m.Email == "" {
		return models.NewValidationError("email", "is required")
	}
	addr, err := mail.ParseAddress(m.Email)
	if err != nil || addr.Address != m.Email {
		return models.NewValidationError("email", fmt.Sprintf("%q is not a valid address", m.Email))
	}
	return nil
}

// Service validates, stores, parses and indexes resumes. The HTTP API, the CLI
// and the inbox watcher all ingest through it.
type Service struct {
	parser  Parser
	indexer Indexer
	uploads *upload.Store
	logger  *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a service that keeps original documents in uploads.
func NewService(parser Parser, indexer Indexer, uploads *upload.Store, opts ...ServiceOption) *Service {
	s := &Service{
		parser:  parser,
		indexer: indexer,
		uploads: uploads,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestUpload stores the document read from r under the upload directory and
// indexes it with meta. The stored copy is removed if ingestion fails.
func (s *Service) IngestUpload(ctx context.Context, filename string, r io.Reader, meta Metadata) (string, error) {
	meta = meta.Normalize()
	if err := meta.Validate(); err != nil {
		return "", err
	}
	if !extract.IsSupported(filename) {
		return "", &models.Error{Op: "validate", Kind: models.ErrValidation, Detail: "file: " + filename, Err: extract.ErrUnsupportedFormat}
	}
	stored, err := s.uploads.Save(filename, r)
	if err != nil {
		return "", models.NewPersistenceError("store upload", err)
	}
	rec, err := s.parser.Parse(ctx, stored)
	if err != nil {
		s.discard(stored)
		return "", err
	}
	return s.index(ctx, rec, meta, stored)
}

// IngestFile copies the document at path into the upload directory and indexes it
// with meta. The file at path is left untouched.
func (s *Service) IngestFile(ctx context.Context, path string, meta Metadata) (string, error) {
	meta = meta.Normalize()
	if err := meta.Validate(); err != nil {
		return "", err
	}
	rec, err := s.parser.Parse(ctx, path)
	if err != nil {
		return "", err
	}
	return s.importAndIndex(ctx, path, rec, meta)
}

// IngestDiscovered indexes a document that arrived without caller metadata.
// Name, email and phone are taken from the resume text.
func (s *Service) IngestDiscovered(ctx context.Context, path string) (string, error) {
	rec, err := s.parser.Parse(ctx, path)
	if err != nil {
		return "", err
	}
	c := resume.ExtractContact(rec.RawText)
	meta := Metadata{Name: c.Name, Email: c.Email, Phone: c.Phone}.Normalize()
	if err := meta.Validate(); err != nil {
		return "", err
	}
	return s.importAndIndex(ctx, path, rec, meta)
}

func (s *Service) importAndIndex(ctx context.Context, path string, rec *models.ResumeRecord, meta Metadata) (string, error) {
	stored, err := s.uploads.Import(path)
	if err != nil {
		return "", models.NewPersistenceError("store resume", err)
	}
	return s.index(ctx, rec, meta, stored)
}

func (s *Service) index(ctx context.Context, rec *models.ResumeRecord, meta Metadata, stored string) (string, error) {
	rec.Name = meta.Name
	rec.Email = meta.Email
	rec.Phone = meta.Phone
	rec.ResumePath = stored
	id, err := s.indexer.IndexResume(ctx, rec)
	if err != nil {
		s.discard(stored)
		return "", err
	}
	s.logger.Info("resume ingested",
		zap.String("candidate_id", id),
		zap.String("file", filepath.Base(stored)),
		zap.Int("skills", len(rec.Skills)))
	return id, nil
}

func (s *Service) discard(stored string) {
	if err := s.uploads.Remove(stored); err != nil {
		s.logger.Warn("failed to remove stored resume", zap.String("path", stored), zap.Error(err))
	}
}
