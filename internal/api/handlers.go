package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/job-tracker/internal/observability"
	"github.com/baxromumarov/job-tracker/internal/store"
)

type ApplicationRequest struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Link        string   `json:"link"`
	Status      string   `json:"status"`
	Notes       string   `json:"notes"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Salary      string   `json:"salary"`
	Tags        []string `json:"tags"`
}

func (req ApplicationRequest) toApplication(userID string) store.Application {
	return store.Application{
		UserID:      userID,
		Title:       req.Title,
		Company:     req.Company,
		Link:        req.Link,
		Status:      store.Status(req.Status),
		Notes:       req.Notes,
		Description: req.Description,
		Location:    req.Location,
		Salary:      req.Salary,
		Tags:        req.Tags,
	}
}

type StatusRequest struct {
	Status string `json:"status"`
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 50)
	q := r.URL.Query()

	filter := store.ListFilter{
		Unprocessed: q.Get("view") == "unprocessed",
		Ascending:   strings.EqualFold(q.Get("order"), "asc"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := q.Get("status"); raw != "" && raw != "all" {
		status, err := store.ParseStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}

	apps, total, err := s.store.ListApplications(r.Context(), userFrom(r.Context()), filter)
	if err != nil {
		s.respondStoreError(w, err, "fetch jobs")
		return
	}
	if apps == nil {
		apps = []store.Application{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  apps,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}
	app, err := s.store.GetApplication(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		s.respondStoreError(w, err, "fetch job")
		return
	}
	respondJSON(w, http.StatusOK, app)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := s.store.CreateApplication(r.Context(), req.toApplication(userFrom(r.Context())))
	if err != nil {
		s.respondStoreError(w, err, "save job")
		return
	}
	observability.IncApplicationsSaved(1)
	respondJSON(w, http.StatusCreated, app)
}

// handleImportJob saves a posting produced by parse-job or the RemoteOK feed.
func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, existed, err := s.store.ImportApplication(r.Context(), req.toApplication(userFrom(r.Context())))
	if err != nil {
		s.respondStoreError(w, err, "import job")
		return
	}

	status := http.StatusOK
	if !existed {
		observability.IncApplicationsSaved(1)
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]interface{}{
		"item":    app,
		"existed": existed,
	})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app := req.toApplication(userFrom(r.Context()))
	app.ID = id
	updated, err := s.store.UpdateApplication(r.Context(), app)
	if err != nil {
		s.respondStoreError(w, err, "update job")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status, err := store.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateStatus(r.Context(), userFrom(r.Context()), id, status); err != nil {
		s.respondStoreError(w, err, "update status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(status), "status_label": status.Label()})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}
	if err := s.store.DeleteApplication(r.Context(), userFrom(r.Context()), id); err != nil {
		s.respondStoreError(w, err, "delete job")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error, action string) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Job not found")
	case errors.Is(err, store.ErrDuplicate):
		respondError(w, http.StatusConflict, "Job with this link already exists")
	default:
		observability.IncError(observability.ErrorStore, "api")
		slog.Error("store failure", "action", action, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
