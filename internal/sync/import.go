package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/flashmd/internal/domain"
	"github.com/conorfennell/flashmd/internal/parser"
	"github.com/conorfennell/flashmd/internal/storage"
)

// ErrEmptyDeck means a parse produced no cards; importing it would create a
// deck with nothing to study, so the import is refused before any write.
var ErrEmptyDeck = errors.New("sync: parsed deck has no cards")

// ImportDeck brings the stored deck in line with the parsed one and returns
// the deck id. A deck is created on the first import of a title; later
// imports of the same title update it in place. Every card whose content is
// new or changed gets fresh scheduling state due tomorrow.
//
// The whole import is one transaction: a failure leaves the deck untouched.
func ImportDeck(db *storage.DB, parsed domain.ParsedDeck) (string, error) {
	if parsed.Empty() {
		return "", fmt.Errorf("%w: %s", ErrEmptyDeck, parsed.Title)
	}

	var deckID string
	err := db.WithTx(func(tx *storage.Tx) error {
		deck, err := tx.GetDeckByTitle(parsed.Title)
		if err != nil {
			return err
		}
		if deck == nil {
			deckID, err = tx.InsertDeck(parsed.Title, parsed.SourceFile)
			if err != nil {
				return err
			}
			slog.Info("New deck created", "title", parsed.Title, "id", deckID)
		} else {
			deckID = deck.ID
		}

		result, err := Synchronize(tx, deckID, parsed)
		if err != nil {
			return err
		}

		for front := range result.ChangedFronts {
			cardID := result.CardIDs[front]
			progress, err := tx.GetProgress(cardID)
			if err != nil {
				return err
			}
			if progress == nil {
				if err := tx.InitProgress(cardID); err != nil {
					return err
				}
			} else if err := tx.ResetProgress(cardID); err != nil {
				return err
			}
		}

		slog.Info("Deck imported",
			"title", parsed.Title,
			"cards", len(result.CardIDs),
			"changed", len(result.ChangedFronts),
			"deleted", len(result.DeletedCardIDs),
		)
		return nil
	})
	if err != nil {
		return "", err
	}
	return deckID, nil
}

// ImportPath imports the markdown file at path, or every .md file under it
// if path is a directory. Empty files are skipped with a warning rather
// than failing the whole run. Returns the number of decks imported.
func ImportPath(db *storage.DB, path string) (int, error) {
	imported := 0
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		parsed, err := parser.ParseFile(p)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", p, err)
		}
		if parsed.Empty() {
			slog.Warn("Skipping file with no cards", "path", p)
			return nil
		}
		if _, err := ImportDeck(db, parsed); err != nil {
			return fmt.Errorf("importing %s: %w", p, err)
		}
		imported++
		return nil
	})
	if err != nil {
		return imported, err
	}
	return imported, nil
}
