package models

import "time"

// ReviewState is the scheduling state of one item for one learner.
type ReviewState struct {
	LearnerID    string    `json:"learner_id" db:"learner_id"`
	ItemID       string    `json:"item_id" db:"item_id"`
	CollectionID string    `json:"collection_id" db:"collection_id"`
	IntervalDays float64   `json:"interval_days" db:"interval_days"`
	EaseFactor   float64   `json:"ease_factor" db:"ease_factor"`
	Repetition   int       `json:"repetition" db:"repetition"`
	DueAt        time.Time `json:"due_at" db:"due_at"`
	LapseCount   int       `json:"lapse_count" db:"lapse_count"`
	Version      int64     `json:"version" db:"version"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the item may be reviewed at now.
func (s ReviewState) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// InLearning reports whether the item has no consecutive successful reviews.
func (s ReviewState) InLearning() bool {
	return s.Repetition == 0
}

// ReviewLogEntry records one rating event. Entries are never modified.
type ReviewLogEntry struct {
	ID           string    `json:"id" db:"id"`
	LearnerID    string    `json:"learner_id" db:"learner_id"`
	ItemID       string    `json:"item_id" db:"item_id"`
	CollectionID string    `json:"collection_id" db:"collection_id"`
	RatedAt      time.Time `json:"rated_at" db:"rated_at"`
	Rating       Rating    `json:"rating" db:"rating"`
	DurationMs   *int64    `json:"duration_ms,omitempty" db:"duration_ms"`
}

// ReviewLogFilter narrows review log queries. Zero fields are ignored.
type ReviewLogFilter struct {
	LearnerID    string
	ItemID       string
	CollectionID string
	Rating       Rating
	From         time.Time
	To           time.Time
}
