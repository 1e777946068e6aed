// Package session holds the in-memory review queue of a single session.
//
// A Session is owned by one caller and is not safe for concurrent use.
// Items are always presented from the front of the queue; the only
// nondeterminism is the requeue position, drawn from the Rand given to New.
package session

import (
	"errors"

	"github.com/vytor/wordflow/internal/models"
)

// DefaultMaxSoloRepeats bounds how often a lone item is re-presented.
const DefaultMaxSoloRepeats = 10

// goodRetireAfter is the in-session review count at which good retires an item.
const goodRetireAfter = 2

// ErrSessionEmpty is returned when grading a session with no current item.
var ErrSessionEmpty = errors.New("session: no current item")

// Rand is the random source used to place requeued items.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// Entry is a queued item together with its in-session review count.
type Entry struct {
	State         models.ReviewState
	TimesReviewed int
}

// Window is the inclusive range of requeue positions for a rating,
// counted from the front of the remaining queue.
type Window struct {
	Min int
	Max int
}

var windows = map[models.Rating]Window{
	models.Again: {Min: 1, Max: 4},
	models.Hard:  {Min: 3, Max: 7},
	models.Good:  {Min: 8, Max: 15},
	models.Easy:  {Min: 20, Max: 45},
}

// RequeueWindow returns the uncapped requeue window for r.
func RequeueWindow(r models.Rating) Window {
	if w, ok := windows[r]; ok {
		return w
	}
	return windows[models.Good]
}

// ShouldRequeue reports whether an item graded r, now reviewed
// timesReviewed times in this session, goes back into the queue.
func ShouldRequeue(r models.Rating, timesReviewed int) bool {
	switch r {
	case models.Again, models.Hard:
		return true
	case models.Good:
		return timesReviewed < goodRetireAfter
	default:
		return false
	}
}

// Outcome describes what a grade did to the session.
type Outcome struct {
	ItemID   string
	Rating   models.Rating
	Requeued bool
	// Position is the 0-based index the item was spliced into. It is 0
	// when the item is re-presented immediately as the only item left.
	Position int
	Next     *Entry
	Complete bool
	Tally    models.Tally
	// Exhausted lists items retired only because they reached the solo
	// repeat limit while still failing.
	Exhausted []string
	// Dropped lists items removed from the session without a grade.
	Dropped []string
}

// Option configures a Session.
type Option func(*Session)

// WithMaxSoloRepeats sets how many times in total an item may be reviewed
// when it is the only item left and keeps being requeued.
func WithMaxSoloRepeats(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxSoloRepeats = n
		}
	}
}

// WithID sets the session identifier.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Session is the ordered queue of items due in one review session.
type Session struct {
	id             string
	queue          []*Entry
	rng            Rand
	tally          models.Tally
	graded         int
	maxSoloRepeats int
	exhausted      []string
	dropped        []string
}

// New seeds a session with items in presentation order.
func New(items []models.ReviewState, rng Rand, opts ...Option) *Session {
	s := &Session{
		queue:          make([]*Entry, 0, len(items)),
		rng:            rng,
		maxSoloRepeats: DefaultMaxSoloRepeats,
	}
	for _, it := range items {
		s.queue = append(s.queue, &Entry{State: it})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

// Current returns the item to present, if any.
func (s *Session) Current() (*Entry, bool) {
	if len(s.queue) == 0 {
		return nil, false
	}
	return s.queue[0], true
}

// Len returns the number of entries still queued, including the current one.
func (s *Session) Len() int { return len(s.queue) }

// Graded returns the number of grades applied so far.
func (s *Session) Graded() int { return s.graded }

// Tally returns the ratings issued so far.
func (s *Session) Tally() models.Tally { return s.tally }

// Complete reports whether the queue has emptied.
func (s *Session) Complete() bool { return len(s.queue) == 0 }

// Dropped returns the items removed from the session without a grade.
func (s *Session) Dropped() []string { return append([]string(nil), s.dropped...) }

// Drop removes the current item without grading it, for items that no
// longer exist. The tally and graded count are unchanged.
func (s *Session) Drop() (Outcome, error) {
	cur, ok := s.Current()
	if !ok {
		return Outcome{Complete: true, Tally: s.tally}, ErrSessionEmpty
	}
	s.queue = s.queue[1:]
	s.dropped = append(s.dropped, cur.State.ItemID)

	out := Outcome{ItemID: cur.State.ItemID, Tally: s.tally}
	s.finish(&out)
	return out, nil
}

// Refresh replaces the snapshot of the current item, typically with the
// state persisted after grading it.
func (s *Session) Refresh(state models.ReviewState) error {
	cur, ok := s.Current()
	if !ok {
		return ErrSessionEmpty
	}
	cur.State = state
	return nil
}

// Grade applies r to the current item and decides whether and where it is
// requeued.
func (s *Session) Grade(r models.Rating) (Outcome, error) {
	cur, ok := s.Current()
	if !ok {
		return Outcome{Complete: true, Tally: s.tally}, ErrSessionEmpty
	}

	cur.TimesReviewed++
	s.graded++
	s.tally.Add(r)

	out := Outcome{ItemID: cur.State.ItemID, Rating: r}
	remaining := s.queue[1:]

	switch {
	case !ShouldRequeue(r, cur.TimesReviewed):
		s.queue = remaining
	case len(remaining) == 0:
		// Nothing to requeue behind: present the item again until it
		// reaches the solo limit, then retire it and report it.
		if cur.TimesReviewed < s.maxSoloRepeats {
			out.Requeued = true
			out.Position = 0
		} else {
			s.queue = remaining
			s.exhausted = append(s.exhausted, cur.State.ItemID)
		}
	default:
		pos := s.drawPosition(r, len(remaining))
		s.queue = splice(remaining, pos, cur)
		out.Requeued = true
		out.Position = pos
	}

	out.Tally = s.tally
	s.finish(&out)
	return out, nil
}

func (s *Session) finish(out *Outcome) {
	if next, ok := s.Current(); ok {
		out.Next = next
		return
	}
	out.Complete = true
	out.Exhausted = append([]string(nil), s.exhausted...)
	out.Dropped = s.Dropped()
}

// drawPosition picks a position uniformly from the rating's window capped
// at the remaining queue length n.
func (s *Session) drawPosition(r models.Rating, n int) int {
	w := RequeueWindow(r)
	hi := min(w.Max, n)
	lo := w.Min
	if hi < lo {
		return hi
	}
	return lo + s.rng.IntN(hi-lo+1)
}

func splice(q []*Entry, i int, e *Entry) []*Entry {
	out := make([]*Entry, 0, len(q)+1)
	out = append(out, q[:i]...)
	out = append(out, e)
	return append(out, q[i:]...)
}
