// Package sm2 implements the SuperMemo-2 spaced-repetition algorithm.
// It is purely computational: callers own persistence and due-date math.
package sm2

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel error for out-of-range ratings. Check with errors.Is.
var ErrInvalidRating = errors.New("sm2: rating must be between 1 and 5")

const (
	// InitialEasiness is the easiness factor assigned to a card that has
	// never been reviewed, or whose content changed since its last review.
	InitialEasiness = 2.5

	// MinEasiness is the floor below which the easiness factor never drops.
	MinEasiness = 1.3
)

// Progress is the scheduling state of a single card.
type Progress struct {
	Easiness    float64
	Interval    int // days until the next review
	Repetitions int // consecutive successful reviews
}

// Default returns the progress assigned to a brand-new card.
func Default() Progress {
	return Progress{Easiness: InitialEasiness, Interval: 0, Repetitions: 0}
}

// Calculate applies one review with the given rating (1-5) and returns the
// updated progress. The input is never modified.
//
// The next interval is computed with the easiness factor as it was before
// this review; the updated factor only affects reviews after this one.
func Calculate(p Progress, rating int) (Progress, error) {
	if rating < 1 || rating > 5 {
		return Progress{}, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	var next Progress

	if rating < 3 {
		next.Interval = 1
		next.Repetitions = 0
	} else {
		switch p.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(p.Interval) * p.Easiness))
		}
		next.Repetitions = p.Repetitions + 1
	}

	q := float64(5 - rating)
	ef := p.Easiness + (0.1 - q*(0.08+q*0.02))
	ef = math.Max(MinEasiness, ef)
	// Keep stored values stable across round trips through the database.
	next.Easiness = math.Round(ef*1e6) / 1e6

	return next, nil
}
