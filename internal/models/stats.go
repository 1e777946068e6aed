package models

import "time"

// LearnerStats is the running activity record of a learner.
type LearnerStats struct {
	LearnerID     string    `json:"learner_id" db:"learner_id"`
	DailyStreak   int       `json:"daily_streak" db:"daily_streak"`
	LongestStreak int       `json:"longest_streak" db:"longest_streak"`
	LastReviewAt  time.Time `json:"last_review_at" db:"last_review_at"`
	TotalReviews  int       `json:"total_reviews" db:"total_reviews"`
}

// Tally counts ratings by value.
type Tally struct {
	Again int `json:"again"`
	Hard  int `json:"hard"`
	Good  int `json:"good"`
	Easy  int `json:"easy"`
}

// Add counts one rating. Invalid ratings are ignored.
func (t *Tally) Add(r Rating) {
	switch r {
	case Again:
		t.Again++
	case Hard:
		t.Hard++
	case Good:
		t.Good++
	case Easy:
		t.Easy++
	}
}

// Total returns the number of ratings counted.
func (t Tally) Total() int {
	return t.Again + t.Hard + t.Good + t.Easy
}

// Correct returns the number of good and easy ratings.
func (t Tally) Correct() int {
	return t.Good + t.Easy
}

// TodayStats summarizes the current calendar day for a learner.
type TodayStats struct {
	Day          time.Time `json:"day"`
	Reviewed     int       `json:"reviewed"`
	Tally        Tally     `json:"tally"`
	Accuracy     int       `json:"accuracy"`
	LeechCount   int       `json:"leech_count"`
	WordsLearned int       `json:"words_learned"`
	DailyStreak  int       `json:"daily_streak"`
	DueCount     int       `json:"due_count"`
	AvgPerDay    int       `json:"avg_reviews_per_day"`
}
