package api

import (
	"net/http"
	"time"

	"hanzi/internal/domain"
	"hanzi/internal/service"
	"hanzi/internal/srs"

	"github.com/go-chi/chi/v5"
)

type startSessionRequest struct {
	Owner string    `json:"owner" validate:"required,max=128"`
	AsOf  time.Time `json:"asOf"`
}

type gradeRequest struct {
	Identity string `json:"identity" validate:"required"`
	Grade    string `json:"grade" validate:"required"`
}

type gradeResponse struct {
	Card    domain.Card         `json:"card"`
	Session service.SessionView `json:"session"`
}

type previewOption struct {
	Grade      domain.Grade `json:"grade"`
	Label      string       `json:"label"`
	NextReview time.Time    `json:"nextReview"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	view, err := s.study.StartSession(r.Context(), "http:"+req.Owner, req.AsOf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.study.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if err := s.study.EndSession(chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reveal(w http.ResponseWriter, r *http.Request) {
	view, err := s.study.Reveal(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	options, err := s.study.Preview(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]previewOption, 0, len(options))
	for _, o := range options {
		out = append(out, previewOption{
			Grade:      o.Grade,
			Label:      srs.FormatInterval(o.Delay),
			NextReview: o.Card.NextReview,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) submitGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	grade, err := domain.ParseGrade(req.Grade)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id := chi.URLParam(r, "sessionID")
	card, err := s.study.SubmitGrade(r.Context(), id, req.Identity, grade)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.study.Session(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, gradeResponse{Card: card, Session: view})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.study.Stats(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
