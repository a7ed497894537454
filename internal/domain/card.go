package domain

// ParsedCard is a single flashcard extracted from a markdown deck file.
// Category is empty for cards that appear before any category heading.
type ParsedCard struct {
	Front    string
	Back     string
	Category string
}

// ParsedDeck is the result of parsing one markdown file.
type ParsedDeck struct {
	Title      string
	SourceFile string
	Cards      []ParsedCard
}

// Empty reports whether the parse produced no cards. Importing an empty
// deck is refused, so callers should check this before handing the deck on.
func (d ParsedDeck) Empty() bool {
	return len(d.Cards) == 0
}
