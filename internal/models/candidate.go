// Package models defines core data structures for resumes, candidates, and search results.
package models

import "time"

// NotSpecified is the placeholder stored when a resume has no recognizable
// education or experience content.
const NotSpecified = "Not specified"

// ResumeRecord is the structured result of parsing one resume document. It has
// no identity of its own and is folded into a Candidate by the search engine.
type ResumeRecord struct {
	Skills     []string `json:"skills"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	RawText    string   `json:"raw_text"`

	// Caller-supplied or derived metadata, attached after parsing.
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumePath string `json:"resume_path"`
}

// Candidate is a persisted, indexed resume.
type Candidate struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Skills        []string  `json:"skills" db:"skills"`
	Education     string    `json:"education" db:"education"`
	Experience    string    `json:"experience" db:"experience"`
	ResumePath    string    `json:"resume_path" db:"resume_path"`
	IndexPosition int       `json:"index_position" db:"index_position"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CandidateMatch is the public view of a candidate returned from search.
// It omits the resume path and the index position.
type CandidateMatch struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	MatchScore float64  `json:"match_score"`
}

// PublicView returns the candidate without internal bookkeeping fields.
func (c *Candidate) PublicView(score float64) *CandidateMatch {
	skills := make([]string, len(c.Skills))
	copy(skills, c.Skills)
	return &CandidateMatch{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Skills:     skills,
		Education:  c.Education,
		Experience: c.Experience,
		MatchScore: score,
	}
}

// SearchRequest is the body of a candidate search.
type SearchRequest struct {
	JobDescription string `json:"job_description"`
	TopK           int    `json:"top_k,omitempty"`
}

// SearchResponse is the response for a candidate search.
type SearchResponse struct {
	Candidates []*CandidateMatch `json:"candidates"`
	QueryTime  int64             `json:"query_time_ms"`
}
