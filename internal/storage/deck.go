package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Deck is one imported markdown deck.
type Deck struct {
	ID          string
	Title       string
	SourceFile  string
	CreatedAt   string
	LastStudied sql.NullString
}

// InsertDeck creates a deck and returns its id.
func (q *queries) InsertDeck(title, sourceFile string) (string, error) {
	id := uuid.NewString()
	_, err := q.Exec(`
		INSERT INTO deck (id, title, source_file, created_at)
		VALUES (?, ?, ?, ?)
	`, id, title, sourceFile, q.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to insert deck %q: %w", title, err)
	}
	return id, nil
}

// GetDeckByTitle retrieves a deck by its title, or nil if none exists.
func (q *queries) GetDeckByTitle(title string) (*Deck, error) {
	return q.scanDeck(q.QueryRow(`
		SELECT id, title, source_file, created_at, last_studied
		FROM deck WHERE title = ?
	`, title))
}

// GetDeckByID retrieves a deck by id, or nil if none exists.
func (q *queries) GetDeckByID(id string) (*Deck, error) {
	return q.scanDeck(q.QueryRow(`
		SELECT id, title, source_file, created_at, last_studied
		FROM deck WHERE id = ?
	`, id))
}

func (q *queries) scanDeck(row *sql.Row) (*Deck, error) {
	var d Deck
	err := row.Scan(&d.ID, &d.Title, &d.SourceFile, &d.CreatedAt, &d.LastStudied)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Deck not found
		}
		return nil, fmt.Errorf("failed to scan deck: %w", err)
	}
	return &d, nil
}

// GetAllDecks retrieves every deck ordered by title.
func (q *queries) GetAllDecks() ([]Deck, error) {
	rows, err := q.Query(`
		SELECT id, title, source_file, created_at, last_studied
		FROM deck ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Title, &d.SourceFile, &d.CreatedAt, &d.LastStudied); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// TouchDeck records that the deck was studied just now.
func (q *queries) TouchDeck(deckID string) error {
	_, err := q.Exec(`
		UPDATE deck SET last_studied = ? WHERE id = ?
	`, q.timestamp(), deckID)
	if err != nil {
		return fmt.Errorf("failed to update last studied for deck %s: %w", deckID, err)
	}
	return nil
}

// DeleteDeck removes a deck; categories, cards, and progress cascade away.
func (q *queries) DeleteDeck(deckID string) error {
	_, err := q.Exec(`DELETE FROM deck WHERE id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", deckID, err)
	}
	return nil
}
