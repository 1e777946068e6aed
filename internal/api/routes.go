package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 15 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Route("/learners/{learnerID}", func(r chi.Router) {
			r.Post("/items", s.handleEnroll)
			r.Delete("/items/{itemID}", s.handleRemoveItem)
			r.Get("/due", s.handleDue)
			r.Post("/sessions", s.handleStartSession)
			r.Get("/stats/today", s.handleTodayStats)
			r.Get("/stats/learned", s.handleLearned)
		})

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/grade", s.handleGrade)
			r.Delete("/", s.handleAbandonSession)
		})
	})
	return r
}
