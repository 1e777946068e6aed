package services

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/wordflow/internal/errors"
	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/session"
)

// DefaultSessionLimit caps the number of due items loaded into a session.
const DefaultSessionLimit = 50

// SessionSnapshot describes a live session as seen by a client.
type SessionSnapshot struct {
	ID           string              `json:"id"`
	LearnerID    string              `json:"learner_id"`
	CollectionID string              `json:"collection_id,omitempty"`
	Current      *models.ReviewState `json:"current,omitempty"`
	Remaining    int                 `json:"remaining"`
	Graded       int                 `json:"graded"`
	Tally        models.Tally        `json:"tally"`
	Complete     bool                `json:"complete"`
	Dropped      []string            `json:"dropped,omitempty"`
}

// GradeResult is the answer to one grade: the next item or the session summary.
type GradeResult struct {
	SessionID string              `json:"session_id"`
	ItemID    string              `json:"item_id"`
	Rating    models.Rating       `json:"rating"`
	State     models.ReviewState  `json:"state"`
	Requeued  bool                `json:"requeued"`
	Position  int                 `json:"position"`
	Next      *models.ReviewState `json:"next,omitempty"`
	Remaining int                 `json:"remaining"`
	Complete  bool                `json:"complete"`
	Tally     models.Tally        `json:"tally"`
	Exhausted []string            `json:"exhausted,omitempty"`
	Dropped   []string            `json:"dropped,omitempty"`
}

// SessionService runs review sessions held in memory.
type SessionService interface {
	Start(ctx context.Context, learnerID, collectionID string, limit int) (*SessionSnapshot, error)
	Get(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	Grade(ctx context.Context, sessionID string, r models.Rating, durationMs *int64) (*GradeResult, error)
	Abandon(ctx context.Context, sessionID string) error
	// RunJanitor expires idle sessions until ctx is done.
	RunJanitor(ctx context.Context)
}

// SessionConfig tunes the session service.
type SessionConfig struct {
	MaxSoloRepeats int
	TTL            time.Duration
	// Seed makes session ordering reproducible. Zero seeds from the clock.
	Seed uint64
}

// SessionServiceOption configures a SessionService.
type SessionServiceOption func(*sessionService)

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionServiceOption {
	return func(s *sessionService) { s.now = now }
}

// WithSessionIDs overrides session ID generation.
func WithSessionIDs(newID func() string) SessionServiceOption {
	return func(s *sessionService) { s.newID = newID }
}

type liveSession struct {
	mu           sync.Mutex
	learnerID    string
	collectionID string
	sess         *session.Session
	lastUsed     atomic.Int64
}

type sessionService struct {
	reviews  ReviewService
	cfg      SessionConfig
	mu       sync.RWMutex
	sessions map[string]*liveSession
	counter  atomic.Uint64
	now      func() time.Time
	newID    func() string
}

// NewSessionService creates a new SessionService
func NewSessionService(reviews ReviewService, cfg SessionConfig, opts ...SessionServiceOption) SessionService {
	if cfg.MaxSoloRepeats <= 0 {
		cfg.MaxSoloRepeats = session.DefaultMaxSoloRepeats
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	s := &sessionService{
		reviews:  reviews,
		cfg:      cfg,
		sessions: make(map[string]*liveSession),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) rng() *rand.Rand {
	n := s.counter.Add(1)
	if s.cfg.Seed == 0 {
		return rand.New(rand.NewPCG(uint64(s.now().UnixNano()), n))
	}
	return rand.New(rand.NewPCG(s.cfg.Seed, n))
}

func (s *sessionService) Start(ctx context.Context, learnerID, collectionID string, limit int) (*SessionSnapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("session_service")
	log.Debug("starting session: learner_id=%s, collection_id=%s, limit=%d", learnerID, collectionID, limit)

	if learnerID == "" {
		return nil, errors.NewValidationError("learner_id", "required")
	}
	if limit <= 0 {
		limit = DefaultSessionLimit
	}

	due, err := s.reviews.Due(ctx, learnerID, collectionID, limit)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	sess := session.New(due, s.rng(), session.WithID(id), session.WithMaxSoloRepeats(s.cfg.MaxSoloRepeats))
	live := &liveSession{learnerID: learnerID, collectionID: collectionID, sess: sess}
	live.lastUsed.Store(s.now().UnixNano())

	// Completed sessions stay registered so late grades report completion.
	s.mu.Lock()
	s.sessions[id] = live
	s.mu.Unlock()

	log.Info("session started: id=%s, items=%d", id, len(due))
	return snapshot(live), nil
}

func (s *sessionService) lookup(sessionID string) (*liveSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	live, ok := s.sessions[sessionID]
	return live, ok
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	live, ok := s.lookup(sessionID)
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	if !live.mu.TryLock() {
		return nil, errors.NewConflictError("session " + sessionID + " is being graded")
	}
	defer live.mu.Unlock()
	return snapshot(live), nil
}

func (s *sessionService) Grade(ctx context.Context, sessionID string, r models.Rating, durationMs *int64) (*GradeResult, error) {
	log := logger.FromContext(ctx).WithPrefix("session_service").WithField("session_id", sessionID)
	log.Debug("grading: rating=%s", r)

	live, ok := s.lookup(sessionID)
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	if !live.mu.TryLock() {
		log.Warn("concurrent grade rejected")
		return nil, errors.NewConflictError("session " + sessionID + " is being graded")
	}
	defer live.mu.Unlock()
	live.lastUsed.Store(s.now().UnixNano())

	cur, ok := live.sess.Current()
	if !ok {
		return nil, errors.NewSessionCompleteError(sessionID, session.ErrSessionEmpty)
	}
	itemID := cur.State.ItemID

	// Persist first; on failure the same item stays current.
	saved, err := s.reviews.Record(ctx, live.learnerID, itemID, r, durationMs)
	if errors.HasCode(err, errors.ErrCodeNotFound) {
		// The item was removed while queued; move past it.
		if _, dropErr := live.sess.Drop(); dropErr != nil {
			return nil, errors.NewInternalError(dropErr)
		}
		log.Warn("item no longer exists, dropped from session: item_id=%s", itemID)
		return nil, err
	}
	if err != nil {
		log.Warn("grade not applied, item stays current: item_id=%s: %v", itemID, err)
		return nil, err
	}
	if err := live.sess.Refresh(*saved); err != nil {
		return nil, errors.NewInternalError(err)
	}

	out, err := live.sess.Grade(r)
	if err != nil {
		if stderrors.Is(err, session.ErrSessionEmpty) {
			return nil, errors.NewSessionCompleteError(sessionID, err)
		}
		return nil, errors.NewInternalError(err)
	}

	res := &GradeResult{
		SessionID: sessionID,
		ItemID:    out.ItemID,
		Rating:    out.Rating,
		State:     *saved,
		Requeued:  out.Requeued,
		Position:  out.Position,
		Remaining: live.sess.Len(),
		Complete:  out.Complete,
		Tally:     out.Tally,
		Exhausted: out.Exhausted,
		Dropped:   out.Dropped,
	}
	if out.Next != nil {
		next := out.Next.State
		res.Next = &next
	}

	if out.Complete {
		log.Info("session complete: graded=%d, easy=%d, exhausted=%d", live.sess.Graded(), out.Tally.Easy, len(out.Exhausted))
	}
	return res, nil
}

func (s *sessionService) remove(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

func (s *sessionService) Abandon(ctx context.Context, sessionID string) error {
	log := logger.FromContext(ctx).WithPrefix("session_service")
	if !s.remove(sessionID) {
		return errors.NewNotFoundError("session", sessionID)
	}
	log.Info("session abandoned: id=%s", sessionID)
	return nil
}

func (s *sessionService) RunJanitor(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("session_janitor")
	interval := s.cfg.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.expire(); n > 0 {
				log.Info("expired %d idle sessions", n)
			}
		}
	}
}

// expire drops sessions idle for longer than the TTL. Sessions being
// graded are skipped.
func (s *sessionService) expire() int {
	cutoff := s.now().Add(-s.cfg.TTL).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, live := range s.sessions {
		if live.lastUsed.Load() >= cutoff || !live.mu.TryLock() {
			continue
		}
		delete(s.sessions, id)
		live.mu.Unlock()
		n++
	}
	return n
}

func snapshot(live *liveSession) *SessionSnapshot {
	snap := &SessionSnapshot{
		ID:           live.sess.ID(),
		LearnerID:    live.learnerID,
		CollectionID: live.collectionID,
		Remaining:    live.sess.Len(),
		Graded:       live.sess.Graded(),
		Tally:        live.sess.Tally(),
		Complete:     live.sess.Complete(),
		Dropped:      live.sess.Dropped(),
	}
	if cur, ok := live.sess.Current(); ok {
		st := cur.State
		snap.Current = &st
	}
	return snap
}
