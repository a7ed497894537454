// Package sync reconciles parsed deck content with the store while
// preserving study history for cards whose content is unchanged.
package sync

import (
	"github.com/conorfennell/flashmd/internal/domain"
	"github.com/conorfennell/flashmd/internal/storage"
)

// Result describes what a synchronization did to a deck.
type Result struct {
	// CardIDs maps each front text to the card id that now carries it.
	CardIDs map[string]string
	// ChangedFronts holds fronts whose back text is new or different; these
	// cards need their scheduling state initialised or reset.
	ChangedFronts map[string]bool
	// DeletedCardIDs holds the ids of cards dropped from the deck.
	DeletedCardIDs []string
}

// Synchronize diffs the parsed cards against the deck's stored cards, keyed
// by front text. Stored cards absent from the parse are deleted, new fronts
// are inserted, and changed backs are updated in place so the matched card
// keeps its identity and its study history.
//
// Categories are rebuilt wholesale: their ids change on every call.
func Synchronize(tx *storage.Tx, deckID string, parsed domain.ParsedDeck) (Result, error) {
	categoryIDs, err := rebuildCategories(tx, deckID, parsed.Cards)
	if err != nil {
		return Result{}, err
	}

	keepFronts := make([]string, 0, len(parsed.Cards))
	for _, card := range parsed.Cards {
		keepFronts = append(keepFronts, card.Front)
	}
	deleted, err := tx.DeleteCardsNotIn(deckID, keepFronts)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		CardIDs:        make(map[string]string, len(parsed.Cards)),
		ChangedFronts:  make(map[string]bool),
		DeletedCardIDs: deleted,
	}

	// Duplicate fronts within one parse collapse to a single card: the last
	// occurrence wins the back text, the first occurrence the category.
	for _, card := range parsed.Cards {
		existing, err := tx.GetCardByFront(deckID, card.Front)
		if err != nil {
			return Result{}, err
		}

		if existing == nil {
			cardID, err := tx.InsertCard(deckID, categoryIDs[card.Category], card.Front, card.Back)
			if err != nil {
				return Result{}, err
			}
			result.CardIDs[card.Front] = cardID
			result.ChangedFronts[card.Front] = true
			continue
		}

		if existing.Back != card.Back {
			if err := tx.UpdateCardBack(existing.ID, card.Back); err != nil {
				return Result{}, err
			}
			result.ChangedFronts[card.Front] = true
		}
		result.CardIDs[card.Front] = existing.ID
	}

	return result, nil
}

// rebuildCategories deletes the deck's categories and reinserts them in the
// order each name first appears in the parse. It returns name → new id.
func rebuildCategories(tx *storage.Tx, deckID string, cards []domain.ParsedCard) (map[string]string, error) {
	if err := tx.DeleteCategories(deckID); err != nil {
		return nil, err
	}

	ids := make(map[string]string)
	for _, card := range cards {
		if card.Category == "" {
			continue
		}
		if _, seen := ids[card.Category]; seen {
			continue
		}
		id, err := tx.InsertCategory(deckID, card.Category, len(ids))
		if err != nil {
			return nil, err
		}
		ids[card.Category] = id
	}
	return ids, nil
}
