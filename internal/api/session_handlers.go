package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/vytor/wordflow/internal/errors"
	"github.com/vytor/wordflow/internal/models"
)

type startSessionRequest struct {
	CollectionID string `json:"collection_id" validate:"max=200"`
	Limit        int    `json:"limit" validate:"gte=0,lte=500"`
}

type gradeRequest struct {
	Rating     string `json:"rating" validate:"required,rating"`
	DurationMs *int64 `json:"duration_ms" validate:"omitempty,gte=0"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")

	var req startSessionRequest
	if err := s.decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.Sessions.Start(r.Context(), learnerID, req.CollectionID, req.Limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req gradeRequest
	if err := s.decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rating, err := models.ParseRating(req.Rating)
	if err != nil {
		handleError(w, r, apperrors.NewValidationError("rating", err.Error()))
		return
	}

	res, err := s.Sessions.Grade(r.Context(), sessionID, rating, req.DurationMs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Abandon(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
