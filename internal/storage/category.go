package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// Category is a named section within a deck. Category rows are rebuilt on
// every import, so their ids must always be re-resolved by name.
type Category struct {
	ID         string
	DeckID     string
	Name       string
	OrderIndex int
}

// InsertCategory creates a category at the given position and returns its id.
func (q *queries) InsertCategory(deckID, name string, orderIndex int) (string, error) {
	id := uuid.NewString()
	_, err := q.Exec(`
		INSERT INTO category (id, deck_id, name, order_index)
		VALUES (?, ?, ?, ?)
	`, id, deckID, name, orderIndex)
	if err != nil {
		return "", fmt.Errorf("failed to insert category %q: %w", name, err)
	}
	return id, nil
}

// GetCategories retrieves the deck's categories in display order.
func (q *queries) GetCategories(deckID string) ([]Category, error) {
	rows, err := q.Query(`
		SELECT id, deck_id, name, order_index
		FROM category WHERE deck_id = ? ORDER BY order_index
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Name, &c.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategories removes all of the deck's categories. Cards referencing
// them fall back to no category.
func (q *queries) DeleteCategories(deckID string) error {
	_, err := q.Exec(`DELETE FROM category WHERE deck_id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete categories for deck %s: %w", deckID, err)
	}
	return nil
}
