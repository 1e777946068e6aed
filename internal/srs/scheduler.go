// Package srs computes the next review state of an item from a rating.
//
// The scheduler is a pure function of (state, rating, now): it keeps no
// state of its own and never consults randomness, so it is safe to call
// concurrently for different items.
package srs

import (
	"math"
	"time"

	"github.com/vytor/wordflow/internal/models"
)

const (
	minutesPerDay = 24 * 60

	hardEasePenalty  = 0.15
	easyEaseBonus    = 0.15
	easyGraduateMult = 1.5
	hardIntervalMult = 1.2
	easyIntervalMult = 1.3
)

// Scheduler applies a fixed Config to review states.
type Scheduler struct {
	cfg Config
}

// New returns a Scheduler for cfg.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg}, nil
}

// Config returns the constants the scheduler was built with.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// NewState returns the initial state of an item added at now.
func (s *Scheduler) NewState(learnerID, itemID, collectionID string, now time.Time) models.ReviewState {
	return NewState(s.cfg, learnerID, itemID, collectionID, now)
}

// Schedule returns the state that follows rating r at now.
func (s *Scheduler) Schedule(state models.ReviewState, r models.Rating, now time.Time) models.ReviewState {
	return Schedule(s.cfg, state, r, now)
}

// NewState returns the initial state of an item added at now.
func NewState(cfg Config, learnerID, itemID, collectionID string, now time.Time) models.ReviewState {
	return models.ReviewState{
		LearnerID:    learnerID,
		ItemID:       itemID,
		CollectionID: collectionID,
		IntervalDays: 0,
		EaseFactor:   cfg.EaseFactorStart,
		Repetition:   0,
		DueAt:        now,
		LapseCount:   0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Schedule returns the state that follows rating r at now.
//
// Ratings outside the four known values are treated as Good; callers at
// the boundary parse ratings with models.ParseRating.
func Schedule(cfg Config, state models.ReviewState, r models.Rating, now time.Time) models.ReviewState {
	next := state
	interval := math.Max(0, state.IntervalDays)
	ease := clamp(state.EaseFactor, cfg.EaseFactorFloor, cfg.EaseFactorCeiling)

	switch {
	case r == models.Again:
		next.LapseCount++
		next.Repetition = 0
		interval = learningStep(cfg, 0) / minutesPerDay
		ease = math.Max(cfg.EaseFactorFloor, ease+cfg.LapsePenalty)

	case state.Repetition <= 0:
		switch r {
		case models.Hard:
			next.Repetition = 0
			interval = learningStep(cfg, 1) / minutesPerDay
		case models.Easy:
			next.Repetition = 1
			interval = cfg.GraduatingIntervalDays * easyGraduateMult
			ease = math.Min(cfg.EaseFactorCeiling, ease+easyEaseBonus)
		default:
			next.Repetition = 1
			interval = cfg.GraduatingIntervalDays
		}

	default:
		next.Repetition = state.Repetition + 1
		switch r {
		case models.Hard:
			ease = math.Max(cfg.EaseFactorFloor, ease-hardEasePenalty)
			interval = math.Max(1, interval*hardIntervalMult)
		case models.Easy:
			ease = math.Min(cfg.EaseFactorCeiling, ease+easyEaseBonus)
			interval = interval * ease * easyIntervalMult
		default:
			interval = interval * ease
		}
	}

	next.IntervalDays = RoundInterval(interval)
	next.EaseFactor = clamp(ease, cfg.EaseFactorFloor, cfg.EaseFactorCeiling)
	next.DueAt = DueAt(now, next.IntervalDays)
	next.UpdatedAt = now
	return next
}

// RoundInterval rounds days to the nearest tenth, halves away from zero.
func RoundInterval(days float64) float64 {
	return math.Round(days*10) / 10
}

// DueAt converts an interval in calendar days into a due timestamp.
func DueAt(now time.Time, intervalDays float64) time.Time {
	return now.Add(time.Duration(math.Round(intervalDays * float64(24*time.Hour))))
}

// learningStep returns step i, falling back to the last configured step.
func learningStep(cfg Config, i int) float64 {
	steps := cfg.LearningStepsMinutes
	if len(steps) == 0 {
		return 0
	}
	if i >= len(steps) {
		return steps[len(steps)-1]
	}
	return steps[i]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
