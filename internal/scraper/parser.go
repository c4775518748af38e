package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/baxromumarov/job-tracker/internal/httpx"
	"github.com/baxromumarov/job-tracker/internal/observability"
)

const parseComponent = "parse_job"

// Parser fetches a single posting page and extracts its fields. It keeps no
// state between calls.
type Parser struct {
	fetcher PageFetcher
}

func NewParser(fetcher PageFetcher) *Parser {
	return &Parser{fetcher: fetcher}
}

// Parse returns ErrMissingURL, a *httpx.FetchError, or a *ParseError on failure.
func (p *Parser) Parse(ctx context.Context, rawURL string) (Posting, error) {
	if rawURL == "" {
		return emptyPosting(), ErrMissingURL
	}

	start := time.Now()
	page, err := p.fetcher.Fetch(ctx, rawURL)
	observability.ObserveFetchDuration(parseComponent, time.Since(start).Seconds())
	if err != nil {
		observability.IncError(observability.ClassifyScrapeError(err), parseComponent)
		var fe *httpx.FetchError
		if !errors.As(err, &fe) {
			err = &httpx.FetchError{Err: err}
		}
		return emptyPosting(), err
	}
	observability.IncPagesFetched(parseComponent)

	posting, err := Extract(page, rawURL)
	if err != nil {
		observability.IncError(observability.ClassifyScrapeError(err), parseComponent)
		return posting, err
	}
	observability.IncPostingsParsed(parseComponent)
	return posting, nil
}
