package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/resumatch/internal/ingest"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/storage"
	"go.uber.org/zap"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to disk.
const multipartMemory = 8 << 20

// Page size bounds for GET /api/v1/candidates.
const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type uploadResponse struct {
	Message     string `json:"message"`
	CandidateID string `json:"candidate_id"`
}

// candidateResponse is a stored candidate without its file path or index position.
type candidateResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Skills     []string  `json:"skills"`
	Education  string    `json:"education"`
	Experience string    `json:"experience"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.config.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "resume exceeds upload limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("resume")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	meta := ingest.Metadata{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}
	s.logger.Debug("upload resume request",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size))
	id, err := s.ingest.IngestUpload(r.Context(), header.Filename, file, meta)
	if err != nil {
		s.respondIngestError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, uploadResponse{
		Message:     "Resume uploaded and indexed successfully",
		CandidateID: id,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		s.respondError(w, http.StatusBadRequest, "job_description is required")
		return
	}
	if req.TopK < 0 {
		s.respondError(w, http.StatusBadRequest, "top_k must not be negative")
		return
	}
	s.logger.Debug("search request", zap.Int("top_k", req.TopK), zap.Int("query_len", len(req.JobDescription)))
	start := time.Now()
	matches, err := s.engine.Search(r.Context(), req.JobDescription, req.TopK)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Candidates: matches,
		QueryTime:  time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.engine.Candidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrCandidateNotFound) {
			s.respondError(w, http.StatusNotFound, "candidate not found")
			return
		}
		s.logger.Error("get candidate failed", zap.String("candidate_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newCandidateResponse(c))
}

type candidateListResponse struct {
	Candidates []candidateResponse `json:"candidates"`
	Offset     int                 `json:"offset"`
	Limit      int                 `json:"limit"`
	Total      int64               `json:"total"`
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 1 {
		s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	candidates, err := s.storage.ListCandidates(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list candidates failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountCandidates(r.Context())
	if err != nil {
		s.logger.Error("count candidates failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := candidateListResponse{
		Candidates: make([]candidateResponse, 0, len(candidates)),
		Offset:     offset,
		Limit:      limit,
		Total:      total,
	}
	for _, c := range candidates {
		resp.Candidates = append(resp.Candidates, newCandidateResponse(c))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func newCandidateResponse(c *models.Candidate) candidateResponse {
	return candidateResponse{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Skills:     c.Skills,
		Education:  c.Education,
		Experience: c.Experience,
		CreatedAt:  c.CreatedAt,
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusConfig is the configuration summary reported by the status endpoint.
type StatusConfig struct {
	VectorIndexType     string   `json:"vector_index_type"`
	EmbeddingProvider   string   `json:"embedding_provider,omitempty"`
	EmbeddingDimensions int      `json:"embedding_dimensions,omitempty"`
	ReloadPolicy        string   `json:"reload_policy,omitempty"`
	DatabasePath        string   `json:"database_path,omitempty"`
	VectorIndexPath     string   `json:"vector_index_path,omitempty"`
	UploadDir           string   `json:"upload_dir,omitempty"`
	InboxDirectories    []string `json:"inbox_directories,omitempty"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Candidates      int64         `json:"candidates"`
	VectorIndexSize int           `json:"vector_index_size"`
	DiskUsageBytes  *int64        `json:"disk_usage_bytes,omitempty"`
	Config          *StatusConfig `json:"config,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.storage.CountCandidates(r.Context())
	if err != nil {
		s.logger.Error("status: count candidates failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := StatusResponse{
		Candidates:      count,
		VectorIndexSize: s.engine.Size(),
		Config: &StatusConfig{
			VectorIndexType:     s.engine.VectorIndexType(),
			EmbeddingProvider:   s.config.Embedding.Provider,
			EmbeddingDimensions: s.config.Embedding.Dimensions,
			ReloadPolicy:        s.config.Engine.ReloadPolicy,
			DatabasePath:        s.config.Storage.DatabasePath,
			VectorIndexPath:     s.config.Storage.VectorIndexPath,
			UploadDir:           s.config.Storage.UploadDir,
		},
	}
	if s.inbox != nil {
		resp.Config.InboxDirectories = s.inbox.Directories()
	}
	diskBytes, err := storage.Footprint(s.config.Storage)
	if err == nil {
		resp.DiskUsageBytes = &diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrCandidateNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondIngestError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("resume ingestion failed", zap.Error(err))
	} else {
		s.logger.Info("resume rejected", zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
