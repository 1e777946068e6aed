package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRating is returned when text cannot be parsed into a Rating.
var ErrInvalidRating = errors.New("invalid rating")

// Rating is the learner's assessment of a recall attempt.
// The zero value is not a valid rating.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// Ratings lists every rating in ascending order.
var Ratings = []Rating{Again, Hard, Good, Easy}

var ratingNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// ParseRating parses the case-insensitive text form of a rating.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again":
		return Again, nil
	case "hard":
		return Hard, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Value stores a rating as its text form.
func (r Rating) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return ratingNames[r], nil
}

// Scan reads a rating stored as text.
func (r *Rating) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("%w: unsupported type %T", ErrInvalidRating, src)
}
