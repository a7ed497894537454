package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Card is a single flashcard. Its front text identifies it within a deck
// across re-imports.
type Card struct {
	ID         string
	DeckID     string
	CategoryID sql.NullString
	Front      string
	Back       string
	CreatedAt  string
}

// InsertCard creates a card and returns its id. categoryID may be empty.
func (q *queries) InsertCard(deckID, categoryID, front, back string) (string, error) {
	id := uuid.NewString()
	catID := sql.NullString{String: categoryID, Valid: categoryID != ""}
	_, err := q.Exec(`
		INSERT INTO card (id, deck_id, category_id, front, back, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, deckID, catID, front, back, q.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to insert card %q: %w", front, err)
	}
	return id, nil
}

// GetCards retrieves the deck's cards in insertion order.
func (q *queries) GetCards(deckID string) ([]Card, error) {
	rows, err := q.Query(`
		SELECT id, deck_id, category_id, front, back, created_at
		FROM card WHERE deck_id = ? ORDER BY rowid
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.CategoryID, &c.Front, &c.Back, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// GetCardByFront retrieves a card by its front text, or nil if none exists.
func (q *queries) GetCardByFront(deckID, front string) (*Card, error) {
	var c Card
	row := q.QueryRow(`
		SELECT id, deck_id, category_id, front, back, created_at
		FROM card WHERE deck_id = ? AND front = ?
	`, deckID, front)

	err := row.Scan(&c.ID, &c.DeckID, &c.CategoryID, &c.Front, &c.Back, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card by front %q: %w", front, err)
	}
	return &c, nil
}

// UpdateCardBack replaces a card's back text in place.
func (q *queries) UpdateCardBack(cardID, back string) error {
	_, err := q.Exec(`UPDATE card SET back = ? WHERE id = ?`, back, cardID)
	if err != nil {
		return fmt.Errorf("failed to update back for card %s: %w", cardID, err)
	}
	return nil
}

// DeleteCardsNotIn removes every card of the deck whose front is not in
// keepFronts and returns the deleted card ids. Progress rows cascade away.
func (q *queries) DeleteCardsNotIn(deckID string, keepFronts []string) ([]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keepFronts)), ",")
	args := make([]any, 0, len(keepFronts)+1)
	args = append(args, deckID)
	for _, front := range keepFronts {
		args = append(args, front)
	}

	query := fmt.Sprintf(
		`SELECT id FROM card WHERE deck_id = ? AND front NOT IN (%s)`, placeholders)
	if len(keepFronts) == 0 {
		query = `SELECT id FROM card WHERE deck_id = ?`
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find removed cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var deleted []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan removed card id: %w", err)
		}
		deleted = append(deleted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range deleted {
		if _, err := q.Exec(`DELETE FROM card WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to delete card %s: %w", id, err)
		}
	}
	return deleted, nil
}
