package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baxromumarov/job-tracker/internal/httpx"
	"github.com/baxromumarov/job-tracker/internal/scraper"
)

// handleParseJob scrapes a single posting URL. Every outcome is one of four
// well-formed bodies: the posting, or one of three fixed error messages.
func (s *Server) handleParseJob(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		respondError(w, http.StatusBadRequest, "No URL provided")
		return
	}

	posting, err := s.parser.Parse(r.Context(), rawURL)
	if err != nil {
		var fe *httpx.FetchError
		switch {
		case errors.Is(err, scraper.ErrMissingURL):
			respondError(w, http.StatusBadRequest, "No URL provided")
		case errors.As(err, &fe):
			slog.Warn("fetch failed", "url", rawURL, "status", fe.Status, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to fetch page")
		default:
			slog.Error("parse error", "url", rawURL, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to parse page")
		}
		return
	}

	respondJSON(w, http.StatusOK, posting)
}

func (s *Server) handleRemoteOKFeed(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.feed.FetchFeed(r.Context())
	if err != nil {
		slog.Error("remoteok feed failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}
	if jobs == nil {
		jobs = []scraper.FeedJob{}
	}
	respondJSON(w, http.StatusOK, jobs)
}
