package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/conorfennell/flashmd/internal/sm2"
)

// ErrProgressNotFound means a card was rated without a progress row, which
// only happens if the import invariant (card and progress created together)
// was broken.
var ErrProgressNotFound = errors.New("storage: no progress for card")

// CardProgress is the SM-2 scheduling state of one card.
type CardProgress struct {
	ID           string
	CardID       string
	Easiness     float64
	Interval     int
	Repetitions  int
	DueDate      string
	LastReviewed sql.NullString
	LastRating   sql.NullInt64
}

// DueCard is a card joined with its progress, ready for review.
type DueCard struct {
	CardID      string
	Front       string
	Back        string
	Easiness    float64
	Interval    int
	Repetitions int
	DueDate     string
}

// InitProgress creates default progress for a new card, due tomorrow.
// It is a no-op if the card already has progress.
func (q *queries) InitProgress(cardID string) error {
	_, err := q.Exec(`
		INSERT OR IGNORE INTO card_progress
			(id, card_id, easiness, interval, repetitions, due_date)
		VALUES (?, ?, ?, 0, 0, ?)
	`, uuid.NewString(), cardID, sm2.InitialEasiness, q.addDays(1))
	if err != nil {
		return fmt.Errorf("failed to init progress for card %s: %w", cardID, err)
	}
	return nil
}

// ResetProgress returns a card's progress to the defaults without replacing
// the row, for cards whose content changed.
func (q *queries) ResetProgress(cardID string) error {
	_, err := q.Exec(`
		UPDATE card_progress
		SET easiness = ?, interval = 0, repetitions = 0, due_date = ?,
		    last_reviewed = NULL, last_rating = NULL
		WHERE card_id = ?
	`, sm2.InitialEasiness, q.addDays(1), cardID)
	if err != nil {
		return fmt.Errorf("failed to reset progress for card %s: %w", cardID, err)
	}
	return nil
}

// GetProgress retrieves a card's progress, or nil if none exists.
func (q *queries) GetProgress(cardID string) (*CardProgress, error) {
	var p CardProgress
	row := q.QueryRow(`
		SELECT id, card_id, easiness, interval, repetitions, due_date,
		       last_reviewed, last_rating
		FROM card_progress WHERE card_id = ?
	`, cardID)

	err := row.Scan(&p.ID, &p.CardID, &p.Easiness, &p.Interval, &p.Repetitions,
		&p.DueDate, &p.LastReviewed, &p.LastRating)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Progress not found
		}
		return nil, fmt.Errorf("failed to get progress for card %s: %w", cardID, err)
	}
	return &p, nil
}

// DueCards retrieves the deck's cards due today or earlier, ordered by due
// date with insertion order as the tie-break.
func (q *queries) DueCards(deckID string) ([]DueCard, error) {
	rows, err := q.Query(`
		SELECT c.id, c.front, c.back,
		       cp.easiness, cp.interval, cp.repetitions, cp.due_date
		FROM card c
		JOIN card_progress cp ON cp.card_id = c.id
		WHERE c.deck_id = ? AND cp.due_date <= ?
		ORDER BY cp.due_date ASC, c.rowid ASC
	`, deckID, q.today())
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var due []DueCard
	for rows.Next() {
		var d DueCard
		if err := rows.Scan(&d.CardID, &d.Front, &d.Back,
			&d.Easiness, &d.Interval, &d.Repetitions, &d.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan due card row: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// ApplyRating runs SM-2 for one review and persists the result: new
// easiness, interval, repetitions, a due date interval days out, and the
// review timestamp. The rating is validated before anything is written.
func (q *queries) ApplyRating(cardID string, rating int) error {
	progress, err := q.GetProgress(cardID)
	if err != nil {
		return err
	}
	if progress == nil {
		return fmt.Errorf("%w: %s", ErrProgressNotFound, cardID)
	}

	result, err := sm2.Calculate(sm2.Progress{
		Easiness:    progress.Easiness,
		Interval:    progress.Interval,
		Repetitions: progress.Repetitions,
	}, rating)
	if err != nil {
		return err
	}

	_, err = q.Exec(`
		UPDATE card_progress
		SET easiness = ?, interval = ?, repetitions = ?, due_date = ?,
		    last_reviewed = ?, last_rating = ?
		WHERE card_id = ?
	`, result.Easiness, result.Interval, result.Repetitions,
		q.addDays(result.Interval), q.timestamp(), rating, cardID)
	if err != nil {
		return fmt.Errorf("failed to apply rating for card %s: %w", cardID, err)
	}
	return nil
}

// DeckStats summarises a deck's study state.
type DeckStats struct {
	Total        int
	Due          int
	RatingCounts map[int]int
}

// GetDeckStats computes card/due totals and the last-rating histogram.
func (q *queries) GetDeckStats(deckID string) (DeckStats, error) {
	stats := DeckStats{RatingCounts: make(map[int]int)}

	err := q.QueryRow(`
		SELECT COUNT(*) FROM card WHERE deck_id = ?
	`, deckID).Scan(&stats.Total)
	if err != nil {
		return DeckStats{}, fmt.Errorf("failed to count cards for deck %s: %w", deckID, err)
	}

	err = q.QueryRow(`
		SELECT COUNT(*) FROM card c
		JOIN card_progress cp ON cp.card_id = c.id
		WHERE c.deck_id = ? AND cp.due_date <= ?
	`, deckID, q.today()).Scan(&stats.Due)
	if err != nil {
		return DeckStats{}, fmt.Errorf("failed to count due cards for deck %s: %w", deckID, err)
	}

	rows, err := q.Query(`
		SELECT cp.last_rating, COUNT(*) FROM card_progress cp
		JOIN card c ON c.id = cp.card_id
		WHERE c.deck_id = ? AND cp.last_rating IS NOT NULL
		GROUP BY cp.last_rating
	`, deckID)
	if err != nil {
		return DeckStats{}, fmt.Errorf("failed to get rating counts for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return DeckStats{}, fmt.Errorf("failed to scan rating count row: %w", err)
		}
		stats.RatingCounts[rating] = count
	}
	return stats, rows.Err()
}
