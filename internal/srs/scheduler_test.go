package srs_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/srs"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func freshState() models.ReviewState {
	return srs.NewState(srs.DefaultConfig(), "learner-1", "item-1", "tagalog", now)
}

func TestNewState(t *testing.T) {
	s := freshState()

	assert.Equal(t, 0.0, s.IntervalDays)
	assert.Equal(t, 2.5, s.EaseFactor)
	assert.Equal(t, 0, s.Repetition)
	assert.Equal(t, 0, s.LapseCount)
	assert.Equal(t, now, s.DueAt)
	assert.True(t, s.IsDue(now))
	assert.True(t, s.InLearning())
}

func TestSchedule_GoodGoodGood(t *testing.T) {
	cfg := srs.DefaultConfig()
	s := freshState()

	s = srs.Schedule(cfg, s, models.Good, now)
	assert.InDelta(t, 1.0, s.IntervalDays, 0.051)
	assert.Equal(t, 1, s.Repetition)

	s = srs.Schedule(cfg, s, models.Good, now)
	assert.InDelta(t, 2.5, s.IntervalDays, 0.051)
	assert.Equal(t, 2, s.Repetition)

	s = srs.Schedule(cfg, s, models.Good, now)
	assert.InDelta(t, 6.25, s.IntervalDays, 0.051)
	assert.Equal(t, 3, s.Repetition)
	assert.Equal(t, 2.5, s.EaseFactor, "good never changes ease")
}

func TestSchedule_Again(t *testing.T) {
	cfg := srs.DefaultConfig()
	states := []models.ReviewState{
		freshState(),
		{IntervalDays: 30, EaseFactor: 2.7, Repetition: 7, LapseCount: 2},
		{IntervalDays: 1, EaseFactor: 1.3, Repetition: 1, LapseCount: 11},
	}

	for _, st := range states {
		next := srs.Schedule(cfg, st, models.Again, now)

		assert.Equal(t, 0, next.Repetition)
		assert.Equal(t, st.LapseCount+1, next.LapseCount)
		assert.GreaterOrEqual(t, next.EaseFactor, cfg.EaseFactorFloor)
		assert.InDelta(t, math.Max(cfg.EaseFactorFloor, st.EaseFactor-0.2), next.EaseFactor, 1e-9)
		// 10 minutes rounds to 0.0 days, so the item is due again at once.
		assert.Equal(t, 0.0, next.IntervalDays)
		assert.Equal(t, now, next.DueAt)
	}
}

func TestSchedule_LearningPhase(t *testing.T) {
	cfg := srs.DefaultConfig()

	tests := []struct {
		name       string
		rating     models.Rating
		interval   float64
		ease       float64
		repetition int
	}{
		{name: "hard stays in learning on second step", rating: models.Hard, interval: 1, ease: 2.5, repetition: 0},
		{name: "good graduates", rating: models.Good, interval: 1, ease: 2.5, repetition: 1},
		{name: "easy graduates with bonus", rating: models.Easy, interval: 1.5, ease: 2.65, repetition: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := srs.Schedule(cfg, freshState(), tt.rating, now)

			assert.InDelta(t, tt.interval, next.IntervalDays, 1e-9)
			assert.InDelta(t, tt.ease, next.EaseFactor, 1e-9)
			assert.Equal(t, tt.repetition, next.Repetition)
			assert.Equal(t, 0, next.LapseCount)
		})
	}
}

func TestSchedule_ReviewPhase(t *testing.T) {
	cfg := srs.DefaultConfig()

	tests := []struct {
		name     string
		state    models.ReviewState
		rating   models.Rating
		interval float64
		ease     float64
	}{
		{
			name:     "hard grows interval by 1.2 and lowers ease",
			state:    models.ReviewState{IntervalDays: 10, EaseFactor: 2.5, Repetition: 3},
			rating:   models.Hard,
			interval: 12,
			ease:     2.35,
		},
		{
			name:     "hard never goes below one day",
			state:    models.ReviewState{IntervalDays: 0.5, EaseFactor: 2.5, Repetition: 1},
			rating:   models.Hard,
			interval: 1,
			ease:     2.35,
		},
		{
			name:     "hard ease stops at floor",
			state:    models.ReviewState{IntervalDays: 4, EaseFactor: 1.35, Repetition: 2},
			rating:   models.Hard,
			interval: 4.8,
			ease:     1.3,
		},
		{
			name:     "good multiplies by ease",
			state:    models.ReviewState{IntervalDays: 6, EaseFactor: 2.5, Repetition: 2},
			rating:   models.Good,
			interval: 15,
			ease:     2.5,
		},
		{
			name:     "easy raises ease then multiplies with bonus",
			state:    models.ReviewState{IntervalDays: 4, EaseFactor: 2.5, Repetition: 2},
			rating:   models.Easy,
			interval: 13.8, // 4 * 2.65 * 1.3 = 13.78
			ease:     2.65,
		},
		{
			name:     "easy ease stops at ceiling",
			state:    models.ReviewState{IntervalDays: 2, EaseFactor: 2.7, Repetition: 4},
			rating:   models.Easy,
			interval: 7.0, // 2 * 2.7 * 1.3 = 7.02
			ease:     2.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := srs.Schedule(cfg, tt.state, tt.rating, now)

			assert.InDelta(t, tt.interval, next.IntervalDays, 1e-9)
			assert.InDelta(t, tt.ease, next.EaseFactor, 1e-9)
			assert.Equal(t, tt.state.Repetition+1, next.Repetition)
		})
	}
}

func TestSchedule_EaseAndIntervalStayInRange(t *testing.T) {
	cfg := srs.DefaultConfig()
	eases := []float64{0.5, 1.3, 1.31, 2.0, 2.5, 2.69, 2.7, 3.5}
	intervals := []float64{-3, 0, 0.1, 1, 2.5, 17.3, 365}
	repetitions := []int{0, 1, 2, 9}

	for _, ef := range eases {
		for _, iv := range intervals {
			for _, rep := range repetitions {
				for _, r := range models.Ratings {
					st := models.ReviewState{IntervalDays: iv, EaseFactor: ef, Repetition: rep, LapseCount: 3}
					next := srs.Schedule(cfg, st, r, now)

					assert.GreaterOrEqual(t, next.EaseFactor, 1.3, "ease floor: ef=%v iv=%v rep=%d r=%s", ef, iv, rep, r)
					assert.LessOrEqual(t, next.EaseFactor, 2.7, "ease ceiling: ef=%v iv=%v rep=%d r=%s", ef, iv, rep, r)
					assert.GreaterOrEqual(t, next.IntervalDays, 0.0)
					assert.GreaterOrEqual(t, next.LapseCount, st.LapseCount)
					assert.Equal(t, srs.DueAt(now, next.IntervalDays), next.DueAt)
					if r == models.Again {
						assert.Equal(t, 0, next.Repetition)
					} else {
						assert.Equal(t, st.LapseCount, next.LapseCount)
					}
				}
			}
		}
	}
}

func TestSchedule_DueAtUsesCalendarDays(t *testing.T) {
	cfg := srs.DefaultConfig()
	st := models.ReviewState{IntervalDays: 6, EaseFactor: 2.5, Repetition: 2}

	next := srs.Schedule(cfg, st, models.Good, now)

	assert.Equal(t, now.Add(15*24*time.Hour), next.DueAt)
	assert.Equal(t, now, next.UpdatedAt)
}

func TestSchedule_SingleLearningStep(t *testing.T) {
	cfg := srs.DefaultConfig()
	cfg.LearningStepsMinutes = []float64{720}

	next := srs.Schedule(cfg, freshState(), models.Hard, now)
	assert.Equal(t, 0.5, next.IntervalDays)

	next = srs.Schedule(cfg, freshState(), models.Again, now)
	assert.Equal(t, 0.5, next.IntervalDays)
}

func TestRoundInterval(t *testing.T) {
	assert.Equal(t, 3.1, srs.RoundInterval(3.14159))
	assert.Equal(t, 6.3, srs.RoundInterval(6.25))
	assert.Equal(t, 0.0, srs.RoundInterval(10.0/1440))
	assert.Equal(t, 1.0, srs.RoundInterval(1440.0/1440))
}

func TestSchedulerMatchesFunction(t *testing.T) {
	s, err := srs.New(srs.DefaultConfig())
	require.NoError(t, err)

	st := s.NewState("l", "i", "c", now)
	assert.Equal(t, srs.Schedule(srs.DefaultConfig(), st, models.Easy, now), s.Schedule(st, models.Easy, now))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*srs.Config)
	}{
		{name: "no learning steps", mutate: func(c *srs.Config) { c.LearningStepsMinutes = nil }},
		{name: "negative learning step", mutate: func(c *srs.Config) { c.LearningStepsMinutes = []float64{10, -1} }},
		{name: "floor above ceiling", mutate: func(c *srs.Config) { c.EaseFactorFloor = 3 }},
		{name: "start outside range", mutate: func(c *srs.Config) { c.EaseFactorStart = 2.9 }},
		{name: "positive lapse penalty", mutate: func(c *srs.Config) { c.LapsePenalty = 0.2 }},
		{name: "zero graduating interval", mutate: func(c *srs.Config) { c.GraduatingIntervalDays = 0 }},
	}

	require.NoError(t, srs.DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := srs.DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), srs.ErrInvalidConfig)

			_, err := srs.New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ease_factor_start: 2.3\nlearning_steps_minutes: [1, 10, 60]\n"), 0o644))

	cfg, err := srs.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.3, cfg.EaseFactorStart)
	assert.Equal(t, []float64{1, 10, 60}, cfg.LearningStepsMinutes)
	assert.Equal(t, 1.3, cfg.EaseFactorFloor, "unset keys keep defaults")

	require.NoError(t, os.WriteFile(path, []byte("ease_factor_floor: 5\n"), 0o644))
	_, err = srs.LoadConfig(path)
	assert.ErrorIs(t, err, srs.ErrInvalidConfig)

	_, err = srs.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
