package logger_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/wordflow/internal/logger"
)

func newBuffered(level logger.Level) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	clock := func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithClock(clock),
	), &buf
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBuffered(logger.WARN)

	log.Info("hidden")
	log.Warn("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")
	assert.Contains(t, buf.String(), "2024-01-02 03:04:05.000 WARN")
}

func TestFieldsAreSortedAndInherited(t *testing.T) {
	log, buf := newBuffered(logger.DEBUG)

	log.WithPrefix("session").WithFields(map[string]any{"b": 2, "a": 1}).Debug("graded")

	line := buf.String()
	assert.Contains(t, line, "[session]")
	assert.Contains(t, line, "graded a=1 b=2")
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	log, buf := newBuffered(logger.DEBUG)

	_ = log.WithField("item_id", "x")
	log.Info("plain")

	assert.NotContains(t, buf.String(), "item_id")
}

func TestContextRoundTrip(t *testing.T) {
	log, _ := newBuffered(logger.DEBUG)
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("warning"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel("ERROR"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
	assert.Equal(t, "UNKNOWN", logger.Level(42).String())
}
