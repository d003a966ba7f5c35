// Package cli provides CLI utilities for resumatch.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
	// OutputCompact is one candidate per line.
	OutputCompact SearchOutputFormat = "compact"
)

// ParseOutputFormat returns the format named s.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputJSON, OutputCompact:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i, c := range response.Candidates {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\t%s\n", i+1, c.MatchScore, c.ID, c.Name, c.Email)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d candidates in %dms\n\n", len(response.Candidates), response.QueryTime)
	for i, c := range response.Candidates {
		writeOneCandidate(w, i+1, c)
	}
}

func writeOneCandidate(w io.Writer, rank int, c *models.CandidateMatch) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Match: %.1f%%\n", rank, c.MatchScore*100)
	fmt.Fprintf(w, "ID: %s\n", c.ID)
	fmt.Fprintf(w, "Name: %s <%s>", c.Name, c.Email)
	if c.Phone != "" {
		fmt.Fprintf(w, " %s", c.Phone)
	}
	fmt.Fprintln(w)
	if len(c.Skills) > 0 {
		fmt.Fprintf(w, "Skills: %s\n", strings.Join(c.Skills, ", "))
	}
	fmt.Fprintf(w, "Education: %s\n", utils.Truncate(c.Education, 200))
	fmt.Fprintf(w, "Experience: %s\n", utils.Truncate(c.Experience, 200))
	fmt.Fprintln(w)
}
