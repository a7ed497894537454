package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/flashmd/internal/domain"
	"github.com/conorfennell/flashmd/internal/parser"
	"github.com/conorfennell/flashmd/internal/storage"
	"github.com/conorfennell/flashmd/internal/sync"
)

const twoCardDeck = "# Deck\n\n**1. FOO — Foo**\nFoo back.\n\n**2. BAR — Bar**\nBar back.\n"

// importDueDeck imports a deck and advances the clock one day so every card
// is due.
func importDueDeck(t *testing.T, md string) (*storage.DB, string) {
	t.Helper()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	parsed, err := parser.Parse(strings.NewReader(md), "deck.md")
	if err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	deckID, err := sync.ImportDeck(db, parsed)
	if err != nil {
		t.Fatalf("ImportDeck() returned an unexpected error: %v", err)
	}

	studyDay := time.Now().AddDate(0, 0, 1)
	db.SetClock(func() time.Time { return studyDay })
	return db, deckID
}

func rate(t *testing.T, s *Session, rating domain.Rating) {
	t.Helper()
	if err := s.Reveal(); err != nil {
		t.Fatalf("Reveal() returned an unexpected error: %v", err)
	}
	if err := s.Rate(rating); err != nil {
		t.Fatalf("Rate(%v) returned an unexpected error: %v", rating, err)
	}
}

func TestNothingDueCompletesImmediately(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	defer db.Close()

	parsed, err := parser.Parse(strings.NewReader(twoCardDeck), "deck.md")
	if err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	deckID, err := sync.ImportDeck(db, parsed)
	if err != nil {
		t.Fatalf("ImportDeck() returned an unexpected error: %v", err)
	}

	// Freshly imported cards are due tomorrow, so nothing is due today.
	s, err := Start(db, deckID)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	if s.Phase() != Complete {
		t.Fatalf("Expected session to complete immediately, but phase is %v", s.Phase())
	}

	summary := s.Summary()
	if !summary.NothingDue {
		t.Errorf("Expected the nothing-due flag to be set")
	}
	if summary.Reviewed != 0 || len(summary.RatingCounts) != 0 {
		t.Errorf("Expected empty summary, but got %+v", summary)
	}
}

func TestSuccessfulSession(t *testing.T) {
	db, deckID := importDueDeck(t, twoCardDeck)

	s, err := Start(db, deckID)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	if s.Phase() != Active {
		t.Fatalf("Expected an active session, but phase is %v", s.Phase())
	}
	if s.Total() != 2 {
		t.Fatalf("Expected 2 due cards, but got %d", s.Total())
	}

	first, err := s.Current()
	if err != nil {
		t.Fatalf("Current() returned an unexpected error: %v", err)
	}
	if first.Front != "FOO — Foo" {
		t.Errorf("Expected insertion order for equal due dates, but got %q first", first.Front)
	}

	rate(t, s, domain.Easy)
	rate(t, s, domain.Good)

	if s.Phase() != Complete {
		t.Fatalf("Expected session to be complete, but phase is %v", s.Phase())
	}

	summary := s.Summary()
	if summary.Reviewed != 2 {
		t.Errorf("Expected 2 reviewed, but got %d", summary.Reviewed)
	}
	if summary.NothingDue {
		t.Errorf("Nothing-due flag set on a session with cards")
	}
	if summary.RatingCounts[domain.Easy] != 1 || summary.RatingCounts[domain.Good] != 1 {
		t.Errorf("Unexpected rating histogram: %+v", summary.RatingCounts)
	}
}

func TestFailedCardIsRequeued(t *testing.T) {
	db, deckID := importDueDeck(t, twoCardDeck)

	s, err := Start(db, deckID)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}

	// Fail the first card: it must come around again after the second.
	rate(t, s, domain.Again)

	if s.Phase() != Active {
		t.Fatalf("Expected session to stay active after a failure")
	}
	if s.Reviewed() != 0 {
		t.Errorf("Expected failures not to count as reviewed, but got %d", s.Reviewed())
	}

	second, err := s.Current()
	if err != nil {
		t.Fatalf("Current() returned an unexpected error: %v", err)
	}
	if second.Front != "BAR — Bar" {
		t.Errorf("Expected the second card next, but got %q", second.Front)
	}
	rate(t, s, domain.Good)

	requeued, err := s.Current()
	if err != nil {
		t.Fatalf("Current() returned an unexpected error: %v", err)
	}
	if requeued.Front != "FOO — Foo" {
		t.Errorf("Expected the failed card to come back, but got %q", requeued.Front)
	}
	rate(t, s, domain.Good)

	if s.Phase() != Complete {
		t.Fatalf("Expected session to be complete, but phase is %v", s.Phase())
	}

	summary := s.Summary()
	if summary.Reviewed != 2 {
		t.Errorf("Expected 2 reviewed, but got %d", summary.Reviewed)
	}
	if summary.RatingCounts[domain.Again] != 1 || summary.RatingCounts[domain.Good] != 2 {
		t.Errorf("Unexpected rating histogram: %+v", summary.RatingCounts)
	}
}

func TestRatingRequiresReveal(t *testing.T) {
	db, deckID := importDueDeck(t, twoCardDeck)

	s, err := Start(db, deckID)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}

	if err := s.Rate(domain.Good); !errors.Is(err, ErrNotRevealed) {
		t.Fatalf("Expected ErrNotRevealed, but got %v", err)
	}

	// The reveal flag resets for each card.
	rate(t, s, domain.Good)
	if err := s.Rate(domain.Good); !errors.Is(err, ErrNotRevealed) {
		t.Fatalf("Expected ErrNotRevealed on the next card, but got %v", err)
	}
}

func TestRatingPersistsScheduleAndDeckActivity(t *testing.T) {
	db, deckID := importDueDeck(t, "# Deck\n\n**1. FOO — Foo**\nFoo back.\n")

	s, err := Start(db, deckID)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	card, err := s.Current()
	if err != nil {
		t.Fatalf("Current() returned an unexpected error: %v", err)
	}

	rate(t, s, domain.Easy)

	progress, err := db.GetProgress(card.CardID)
	if err != nil {
		t.Fatalf("GetProgress() returned an unexpected error: %v", err)
	}
	if progress.Interval != 1 || progress.Repetitions != 1 {
		t.Errorf("Expected interval=1 repetitions=1 after first pass, but got %+v", progress)
	}
	if !progress.LastRating.Valid || progress.LastRating.Int64 != 4 {
		t.Errorf("Expected last rating 4, but got %+v", progress.LastRating)
	}
	if !progress.LastReviewed.Valid {
		t.Errorf("Expected last reviewed to be recorded")
	}

	deck, err := db.GetDeckByID(deckID)
	if err != nil {
		t.Fatalf("GetDeckByID() returned an unexpected error: %v", err)
	}
	if !deck.LastStudied.Valid {
		t.Errorf("Expected deck last-studied to be set after a rating")
	}
}

func TestInvalidRatingLeavesSessionIntact(t *testing.T) {
	db, deckID := importDueDeck(t, twoCardDeck)

	s, err := Start(db, deckID)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	if err := s.Reveal(); err != nil {
		t.Fatalf("Reveal() returned an unexpected error: %v", err)
	}

	before, err := s.Current()
	if err != nil {
		t.Fatalf("Current() returned an unexpected error: %v", err)
	}

	if err := s.Rate(domain.Rating(6)); err == nil {
		t.Fatalf("Expected an error for rating 6")
	}

	after, err := s.Current()
	if err != nil {
		t.Fatalf("Current() returned an unexpected error: %v", err)
	}
	if after.CardID != before.CardID {
		t.Errorf("Expected the card to stay at the head after a rejected rating")
	}
	if s.Remaining() != 2 {
		t.Errorf("Expected the queue to be untouched, but %d remain", s.Remaining())
	}

	progress, err := db.GetProgress(before.CardID)
	if err != nil {
		t.Fatalf("GetProgress() returned an unexpected error: %v", err)
	}
	if progress.Repetitions != 0 || progress.LastRating.Valid {
		t.Errorf("Expected no state mutation from an invalid rating, but got %+v", progress)
	}
}
