// Package parser turns markdown deck files into structured flashcards.
//
// The grammar is line-oriented: the first H1 names the deck, each H2 opens
// a category, and a bold numbered line like "**1. TERM — description**"
// starts a card front. Everything until the next front, category, or
// horizontal rule becomes the card back.
package parser

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conorfennell/flashmd/internal/domain"
)

var (
	reTitle    = regexp.MustCompile(`^# (.+)`)
	reCategory = regexp.MustCompile(`^## (.+)`)
	reFront    = regexp.MustCompile(`^\*\*\d+\.\s(.+?)\*\*`)
	reRule     = regexp.MustCompile(`^---+$`)
)

// ParseFile reads the file at path and parses it into a deck. The deck's
// source file is the given path; its title falls back to the file name if
// the markdown has no top-level heading.
func ParseFile(path string) (domain.ParsedDeck, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.ParsedDeck{}, err
	}
	defer file.Close()

	return Parse(file, filepath.Base(path))
}

// Parse reads markdown from r and extracts all cards. A text with no card
// fronts yields a deck with an empty card list and no error.
func Parse(r io.Reader, sourceFile string) (domain.ParsedDeck, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		title     string
		category  string
		front     string
		inCard    bool
		backLines []string
		cards     []domain.ParsedCard
	)

	flushCard := func() {
		if inCard {
			cards = append(cards, domain.ParsedCard{
				Front:    front,
				Back:     cleanBack(backLines),
				Category: category,
			})
		}
		inCard = false
		front = ""
		backLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case title == "" && reTitle.MatchString(line):
			title = strings.TrimSpace(reTitle.FindStringSubmatch(line)[1])
		case reCategory.MatchString(line):
			flushCard()
			category = strings.TrimSpace(reCategory.FindStringSubmatch(line)[1])
		case reRule.MatchString(line):
			// Horizontal rules are cosmetic separators.
		case reFront.MatchString(line):
			flushCard()
			front = strings.TrimSpace(reFront.FindStringSubmatch(line)[1])
			inCard = true
		case inCard:
			backLines = append(backLines, line)
		}
	}
	flushCard()

	if err := scanner.Err(); err != nil {
		return domain.ParsedDeck{}, err
	}

	if title == "" {
		title = sourceFile
	}

	return domain.ParsedDeck{Title: title, SourceFile: sourceFile, Cards: cards}, nil
}

// cleanBack joins back lines into paragraphs: runs of blank lines become a
// single paragraph break, lines within a paragraph are joined with spaces,
// and leading/trailing blank lines are dropped.
func cleanBack(lines []string) string {
	var paragraphs []string
	var current []string

	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			current = append(current, trimmed)
		} else if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}

	return strings.Join(paragraphs, "\n\n")
}
