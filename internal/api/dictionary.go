package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type favoriteResponse struct {
	Character  string `json:"character"`
	IsFavorite bool   `json:"isFavorite"`
}

func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	details, err := s.chars.Details(r.Context(), chi.URLParam(r, "character"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

func (s *Server) searchCharacters(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	chars, err := s.chars.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chars)
}

func (s *Server) byHSKLevel(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "level must be a number")
		return
	}

	chars, err := s.chars.ByHSKLevel(r.Context(), level)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chars)
}

func (s *Server) favorites(w http.ResponseWriter, r *http.Request) {
	chars, err := s.chars.Favorites(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chars)
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	character := chi.URLParam(r, "character")
	favorite, err := s.chars.ToggleFavorite(r.Context(), character)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, favoriteResponse{Character: character, IsFavorite: favorite})
}

func (s *Server) randomCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := s.chars.Random(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.progress.Progress(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) resetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.progress.ResetAll(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
