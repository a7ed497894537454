// Package session drives one study session over a deck's due cards.
//
// A session moves Loading → Active → Complete. Cards are reviewed from the
// head of a working queue; a failed rating sends the card to the back of
// the queue for another pass in the same session, with no cap, so the
// session only ends once every card has been rated Good or better.
package session

import (
	"errors"
	"fmt"

	"github.com/conorfennell/flashmd/internal/domain"
	"github.com/conorfennell/flashmd/internal/storage"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	Loading Phase = iota
	Active
	Complete
)

var (
	// ErrNotRevealed means a rating arrived before the card was flipped.
	ErrNotRevealed = errors.New("session: card has not been revealed")
	// ErrComplete means an operation needs an active session.
	ErrComplete = errors.New("session: session is complete")
)

// Summary is the outcome of a finished session.
type Summary struct {
	// Reviewed counts cards that left the queue with a passing rating.
	// Failed ratings are not counted; the card comes back around.
	Reviewed int
	// RatingCounts tallies every rating given, including repeats.
	RatingCounts map[domain.Rating]int
	// NothingDue is set when the session completed without a single card.
	NothingDue bool
}

// Session is a single-user study run over one deck.
type Session struct {
	db     *storage.DB
	deckID string

	phase    Phase
	queue    []storage.DueCard
	total    int
	reviewed int
	counts   map[domain.Rating]int
	revealed bool
}

// Start loads the deck's due cards and returns the session. With nothing
// due the session is already Complete and its summary says so.
func Start(db *storage.DB, deckID string) (*Session, error) {
	s := &Session{
		db:     db,
		deckID: deckID,
		phase:  Loading,
		counts: make(map[domain.Rating]int),
	}

	due, err := db.DueCards(deckID)
	if err != nil {
		return nil, fmt.Errorf("loading due cards: %w", err)
	}

	s.queue = due
	s.total = len(due)
	if len(due) == 0 {
		s.phase = Complete
	} else {
		s.phase = Active
	}
	return s, nil
}

// Phase returns the session's lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns the card at the head of the queue.
func (s *Session) Current() (storage.DueCard, error) {
	if s.phase != Active {
		return storage.DueCard{}, ErrComplete
	}
	return s.queue[0], nil
}

// Reveal flips the current card so its back is visible and a rating can be
// accepted. Revealing twice is harmless.
func (s *Session) Reveal() error {
	if s.phase != Active {
		return ErrComplete
	}
	s.revealed = true
	return nil
}

// Revealed reports whether the current card has been flipped.
func (s *Session) Revealed() bool {
	return s.revealed
}

// Rate applies a rating to the current card: the scheduler result and the
// deck's last-studied time are persisted in one transaction, then the card
// either leaves the queue (success) or rejoins it at the tail (failure).
// The card must have been revealed first.
func (s *Session) Rate(rating domain.Rating) error {
	if s.phase != Active {
		return ErrComplete
	}
	if !s.revealed {
		return ErrNotRevealed
	}

	card := s.queue[0]
	err := s.db.WithTx(func(tx *storage.Tx) error {
		if err := tx.ApplyRating(card.CardID, int(rating)); err != nil {
			return err
		}
		return tx.TouchDeck(s.deckID)
	})
	if err != nil {
		return err
	}

	s.queue = s.queue[1:]
	s.counts[rating]++
	s.revealed = false

	if rating.Failed() {
		s.queue = append(s.queue, card)
	} else {
		s.reviewed++
	}

	if len(s.queue) == 0 {
		s.phase = Complete
	}
	return nil
}

// Remaining returns how many cards are still queued.
func (s *Session) Remaining() int {
	return len(s.queue)
}

// Reviewed returns how many cards have passed so far.
func (s *Session) Reviewed() int {
	return s.reviewed
}

// Total returns how many cards were due when the session started.
func (s *Session) Total() int {
	return s.total
}

// Summary returns the session's outcome counters. It is meaningful once
// the session is Complete but safe to call at any point.
func (s *Session) Summary() Summary {
	counts := make(map[domain.Rating]int, len(s.counts))
	for rating, n := range s.counts {
		counts[rating] = n
	}
	return Summary{
		Reviewed:     s.reviewed,
		RatingCounts: counts,
		NothingDue:   s.total == 0,
	}
}
