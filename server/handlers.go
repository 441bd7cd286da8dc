package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hubenschmidt/reelmatch/core"
	"github.com/hubenschmidt/reelmatch/recommend"
	"github.com/hubenschmidt/reelmatch/server/store"
)

const (
	pageTitle        = "Movie Recommendation System"
	resultsTitle     = "Recommendations"
	emptyQueryPrompt = "Please enter a movie name."
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := render(w, http.StatusOK, "index.html", indexPage{Title: pageTitle}); err != nil {
		s.log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleRecommendForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.renderIndexError(w, "", "Could not read the form.")
		return
	}
	query := r.PostForm.Get("movie_name")

	res, lookupID, err := s.recommend(r.Context(), query)
	switch {
	case errors.Is(err, core.ErrEmptyQuery):
		s.renderIndexError(w, query, emptyQueryPrompt)
		return
	case err != nil && !errors.Is(err, core.ErrNoMatch):
		s.log.Error().Err(err).Str("lookup_id", lookupID).Msg("recommend")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := resultsPage{
		Title:           resultsTitle,
		Query:           s.engine.TitleCase(recommend.Normalize(query)),
		Recommendations: res.Recommendations,
	}
	if err := render(w, http.StatusOK, "results.html", page); err != nil {
		s.log.Error().Err(err).Msg("render results")
	}
}

func (s *Server) renderIndexError(w http.ResponseWriter, query, msg string) {
	page := indexPage{Title: pageTitle, Query: query, Error: msg}
	if err := render(w, http.StatusBadRequest, "index.html", page); err != nil {
		s.log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleAPIRecommend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("movie_name")

	res, lookupID, err := s.recommend(r.Context(), query)
	switch {
	case errors.Is(err, core.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "movie_name is required"})
		return
	case errors.Is(err, core.ErrNoMatch):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:    "no close match found",
			Query:    recommend.Normalize(query),
			LookupID: lookupID,
		})
		return
	case err != nil:
		s.log.Error().Err(err).Str("lookup_id", lookupID).Msg("recommend")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, RecommendResponse{
		LookupID:        lookupID,
		Query:           res.Query,
		Match:           res.Match,
		Recommendations: res.Recommendations,
	})
}

// recommend runs the engine and records the lookup. Blank queries are not
// recorded. A failure to record is logged and otherwise ignored.
func (s *Server) recommend(ctx context.Context, query string) (recommend.Result, string, error) {
	start := time.Now()
	res, err := s.engine.Recommend(ctx, query)
	if errors.Is(err, core.ErrEmptyQuery) {
		return res, "", err
	}

	l := Lookup{
		ID:        uuid.NewString(),
		Query:     recommend.Normalize(query),
		Match:     res.Match,
		Found:     err == nil,
		Results:   len(res.Recommendations),
		ElapsedMs: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UnixMilli(),
	}
	if addErr := s.lookups.Add(ctx, l); addErr != nil {
		s.log.Warn().Err(addErr).Str("lookup_id", l.ID).Msg("record lookup")
	}
	return res, l.ID, err
}

func (s *Server) handleLookupList(w http.ResponseWriter, r *http.Request) {
	limit := defaultLookupLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	lookups, err := s.lookups.List(r.Context(), limit)
	if err != nil {
		s.internalError(w, err, "list lookups")
		return
	}
	writeJSON(w, http.StatusOK, LookupListResponse{Lookups: lookups})
}

func (s *Server) handleLookupGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := s.lookups.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "lookup not found"})
		return
	}
	if err != nil {
		s.internalError(w, err, "get lookup")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleLookupDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.lookups.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "lookup not found"})
		return
	}
	if err != nil {
		s.internalError(w, err, "delete lookup")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLookupSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.lookups.Summary(r.Context())
	if err != nil {
		s.internalError(w, err, "lookup summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) internalError(w http.ResponseWriter, err error, msg string) {
	s.log.Error().Err(err).Msg(msg)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
