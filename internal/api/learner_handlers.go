package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
)

type enrollRequest struct {
	ItemID       string `json:"item_id" validate:"required,max=200"`
	CollectionID string `json:"collection_id" validate:"max=200"`
}

type enrollResponse struct {
	State   *models.ReviewState `json:"state"`
	Created bool                `json:"created"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	learnerID := chi.URLParam(r, "learnerID")

	var req enrollRequest
	if err := s.decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("enroll request: learner_id=%s, item_id=%s", learnerID, req.ItemID)

	st, created, err := s.Reviews.Enroll(r.Context(), learnerID, req.ItemID, req.CollectionID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, enrollResponse{State: st, Created: created})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	itemID := chi.URLParam(r, "itemID")

	if err := s.Reviews.RemoveItem(r.Context(), learnerID, itemID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	due, err := s.Reviews.Due(r.Context(), learnerID, r.URL.Query().Get("collection"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if due == nil {
		due = []models.ReviewState{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": due, "count": len(due)})
}

func (s *Server) handleTodayStats(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")

	today, err := s.Stats.Today(r.Context(), learnerID, r.URL.Query().Get("collection"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, today)
}

func (s *Server) handleLearned(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")

	items, err := s.Stats.Learned(r.Context(), learnerID, r.URL.Query().Get("collection"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
