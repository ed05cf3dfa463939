package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/models"
	"github.com/hyperjump/kagi/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// filtersFromQuery reads search filters from URL query parameters.
func filtersFromQuery(r *http.Request) (models.SearchFilters, error) {
	q := r.URL.Query()
	f := models.SearchFilters{
		Query:    q.Get("q"),
		App:      q.Get("app"),
		Platform: models.Platform(q.Get("platform")),
		Category: q.Get("category"),
		Context:  q.Get("context"),
		Tag:      q.Get("tag"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, err
		}
		f.Limit = n
	}
	return f, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	s.logger.Debug("search request", zap.String("query", filters.Query), zap.Int("limit", filters.Limit))
	response, err := s.engine.Search(r.Context(), filters)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSearchByKeys(w http.ResponseWriter, r *http.Request) {
	combo := r.URL.Query().Get("combo")
	platform := models.Platform(r.URL.Query().Get("platform"))
	s.logger.Debug("key search request", zap.String("combo", combo), zap.String("platform", string(platform)))
	results, err := s.engine.SearchByKeys(r.Context(), combo, platform)
	if err != nil {
		s.logger.Error("key search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := &models.SearchResponse{
		Results: make([]*models.ScoredShortcut, len(results)),
		Total:   len(results),
		Query:   combo,
		Mode:    "keys",
	}
	for i, rec := range results {
		resp.Results[i] = &models.ScoredShortcut{Shortcut: rec}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var filters models.SearchFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("semantic search request", zap.String("query", filters.Query), zap.Int("limit", filters.Limit))
	response, err := s.semantic.Search(r.Context(), filters)
	if err != nil {
		s.logger.Error("semantic search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) shortcutByID(w http.ResponseWriter, r *http.Request) (*models.Shortcut, bool) {
	id := chi.URLParam(r, "id")
	rec, err := s.storage.ByID(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			s.respondError(w, http.StatusNotFound, "shortcut not found")
			return nil, false
		}
		s.logger.Error("get shortcut failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGetShortcut(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.shortcutByID(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.shortcutByID(w, r)
	if !ok {
		return
	}
	platform, _ := models.ParsePlatform(r.URL.Query().Get("platform"))
	text := s.semantic.ExplainShortcut(r.Context(), rec, platform)
	s.respondJSON(w, http.StatusOK, &models.ExplainResponse{ID: rec.ID, Explanation: text})
}

func (s *Server) handleAppShortcuts(w http.ResponseWriter, r *http.Request) {
	app := chi.URLParam(r, "app")
	recs, err := s.storage.ByApp(r.Context(), app)
	if err != nil {
		s.logger.Error("list app shortcuts failed", zap.String("app", app), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"app":       app,
		"shortcuts": recs,
		"total":     len(recs),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := CollectStatus(r.Context(), StatusSource{
		Storage:  s.storage,
		Catalog:  s.catalog,
		Semantic: s.semantic,
		Config:   s.config,
		Watch:    s.watch,
	})
	if err != nil {
		s.logger.Error("status: collect failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
