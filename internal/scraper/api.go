package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/baxromumarov/job-tracker/internal/observability"
)

// Posting is the flat record recovered from a single job-posting page.
// Every field is always present; misses are empty strings or an empty slice.
type Posting struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Salary      string   `json:"salary"`
	Tags        []string `json:"tags"`
}

func emptyPosting() Posting {
	return Posting{Tags: []string{}}
}

// ErrMissingURL is returned when Parse is called without a URL. No fetch is attempted.
var ErrMissingURL = errors.New("no url provided")

// ParseError wraps any unexpected failure while querying the parsed document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == observability.ErrMalformed
}

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

type JSONFetcher interface {
	FetchJSON(ctx context.Context, rawURL string) ([]byte, error)
}

type Normalizer interface {
	Normalize(htmlContent string) (string, error)
}
