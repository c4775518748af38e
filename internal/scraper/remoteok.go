package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/baxromumarov/job-tracker/internal/observability"
)

const (
	DefaultRemoteOKURL = "https://remoteok.com/api"
	feedComponent      = "feed_remoteok"
)

// FeedJob is one aggregator listing offered for import.
type FeedJob struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Link        string     `json:"link"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// RemoteOK API returns a JSON array; the first element is metadata.
type remoteOKJob struct {
	ID          json.RawMessage `json:"id"`
	Position    string          `json:"position"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	URL         string          `json:"url"`
	Tags        []string        `json:"tags"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
}

type RemoteOKFeed struct {
	fetcher    JSONFetcher
	url        string
	normalizer Normalizer
}

func NewRemoteOKFeed(fetcher JSONFetcher, feedURL string) *RemoteOKFeed {
	if feedURL == "" {
		feedURL = DefaultRemoteOKURL
	}
	return &RemoteOKFeed{
		fetcher:    fetcher,
		url:        feedURL,
		normalizer: NewSimpleNormalizer(),
	}
}

func (r *RemoteOKFeed) FetchFeed(ctx context.Context) ([]FeedJob, error) {
	jobs, err := r.fetchFeed(ctx)
	if err != nil {
		observability.IncError(observability.ClassifyScrapeError(err), feedComponent)
		return nil, err
	}
	return jobs, nil
}

func (r *RemoteOKFeed) fetchFeed(ctx context.Context) ([]FeedJob, error) {
	body, err := r.fetcher.FetchJSON(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch failed: %w", err)
	}
	observability.IncPagesFetched(feedComponent)

	var data []remoteOKJob
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("remoteok decode failed: %w", err)
	}
	if len(data) == 0 {
		return []FeedJob{}, nil
	}

	jobs := make([]FeedJob, 0, len(data)-1)
	for _, j := range data[1:] {
		title := j.Position
		if title == "" {
			title = j.Title
		}
		tags := j.Tags
		if tags == nil {
			tags = []string{}
		}
		desc := j.Description
		if desc != "" {
			if normalized, err := r.normalizer.Normalize(desc); err == nil {
				desc = normalized
			}
		}
		jobs = append(jobs, FeedJob{
			ID:          rawID(j.ID),
			Title:       title,
			Company:     j.Company,
			Link:        j.URL,
			Tags:        tags,
			Description: desc,
			Location:    j.Location,
			PostedAt:    parseRemoteOKDate(j.Date),
		})
	}
	return jobs, nil
}

// rawID accepts both numeric and string ids.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	return strings.Trim(s, `"`)
}

func parseRemoteOKDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	// Example: "2023-12-20T04:02:19+00:00"
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
