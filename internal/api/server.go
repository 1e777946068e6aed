package api

import (
	"context"

	"github.com/vytor/wordflow/internal/services"
	"github.com/vytor/wordflow/internal/validation"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Reviews  services.ReviewService
	Sessions services.SessionService
	Stats    services.StatsService
	DB       Pinger

	validator *validation.Validator
}

// NewServer wires the HTTP handlers to the services.
func NewServer(reviews services.ReviewService, sessions services.SessionService, stats services.StatsService, db Pinger) (*Server, error) {
	v, err := validation.New("json")
	if err != nil {
		return nil, err
	}
	return &Server{
		Reviews:   reviews,
		Sessions:  sessions,
		Stats:     stats,
		DB:        db,
		validator: v,
	}, nil
}
