// Package web serves the flashmd study UI: deck list, import, review flow,
// and per-deck statistics, rendered as HTMX fragments.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/conorfennell/flashmd/internal/domain"
	"github.com/conorfennell/flashmd/internal/parser"
	"github.com/conorfennell/flashmd/internal/session"
	"github.com/conorfennell/flashmd/internal/storage"
	"github.com/conorfennell/flashmd/internal/sync"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	router    *http.ServeMux
	templates *template.Template

	// One study session at a time; the tool is single-user.
	session *session.Session
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB) *Server {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		db:        db,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex())
	s.router.HandleFunc("/import", s.handleImport())
	s.router.HandleFunc("/decks/", s.handleDeck())
	s.router.HandleFunc("/study/", s.handleStartStudy())
	s.router.HandleFunc("/review/reveal", s.handleReveal())
	s.router.HandleFunc("/review/rate", s.handleRate())
}

// deckRow is one entry on the deck list page.
type deckRow struct {
	Deck  storage.Deck
	Stats storage.DeckStats
}

func (s *Server) deckRows() ([]deckRow, error) {
	decks, err := s.db.GetAllDecks()
	if err != nil {
		return nil, err
	}
	rows := make([]deckRow, 0, len(decks))
	for _, deck := range decks {
		stats, err := s.db.GetDeckStats(deck.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, deckRow{Deck: deck, Stats: stats})
	}
	return rows, nil
}

// handleIndex renders the deck list page.
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		rows, err := s.deckRows()
		if err != nil {
			log.Printf("Error loading decks: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.templates.ExecuteTemplate(w, "index", map[string]interface{}{
			"Decks": rows,
		})
	}
}

// handleImport parses an uploaded or path-referenced markdown file and
// imports it, then re-renders the deck list.
func (s *Server) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		path := r.PostFormValue("path")
		if path == "" {
			http.Error(w, "Path cannot be empty", http.StatusBadRequest)
			return
		}

		parsed, err := parser.ParseFile(path)
		if err != nil {
			log.Printf("Error parsing %s: %v", path, err)
			http.Error(w, "Could not read markdown file", http.StatusBadRequest)
			return
		}
		if parsed.Empty() {
			http.Error(w, "File contains no cards", http.StatusBadRequest)
			return
		}

		if _, err := sync.ImportDeck(s.db, parsed); err != nil {
			log.Printf("Error importing %s: %v", path, err)
			http.Error(w, "Import failed", http.StatusInternalServerError)
			return
		}

		s.renderDeckList(w)
	}
}

// handleDeck serves per-deck actions: DELETE removes the deck, GET with a
// trailing /stats renders the statistics fragment.
func (s *Server) handleDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/decks/")

		if r.Method == http.MethodDelete {
			if err := s.db.DeleteDeck(rest); err != nil {
				log.Printf("Error deleting deck %s: %v", rest, err)
				http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
				return
			}
			s.renderDeckList(w)
			return
		}

		if r.Method == http.MethodGet && strings.HasSuffix(rest, "/stats") {
			deckID := strings.TrimSuffix(rest, "/stats")
			s.renderStats(w, r, deckID)
			return
		}

		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStartStudy begins a session for the deck in the URL and shows the
// first card front, or the summary straight away when nothing is due.
func (s *Server) handleStartStudy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deckID := strings.TrimPrefix(r.URL.Path, "/study/")

		sess, err := session.Start(s.db, deckID)
		if err != nil {
			log.Printf("Error starting session for deck %s: %v", deckID, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.session = sess
		s.renderSession(w)
	}
}

// handleReveal flips the current card.
func (s *Server) handleReveal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || s.session == nil {
			http.Error(w, "No active session", http.StatusBadRequest)
			return
		}
		if err := s.session.Reveal(); err != nil {
			http.Error(w, "No card to reveal", http.StatusBadRequest)
			return
		}
		s.renderSession(w)
	}
}

// handleRate applies a rating to the revealed card and shows what's next.
func (s *Server) handleRate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || s.session == nil {
			http.Error(w, "No active session", http.StatusBadRequest)
			return
		}

		grade, err := strconv.Atoi(r.PostFormValue("grade"))
		if err != nil {
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		}

		if err := s.session.Rate(domain.Rating(grade)); err != nil {
			log.Printf("Error applying rating: %v", err)
			http.Error(w, "Rating failed", http.StatusBadRequest)
			return
		}
		s.renderSession(w)
	}
}

// renderSession shows the current state of the active session: the next
// card front, the revealed card, or the completed summary.
func (s *Server) renderSession(w http.ResponseWriter) {
	if s.session.Phase() == session.Complete {
		summary := s.session.Summary()
		s.templates.ExecuteTemplate(w, "summary", map[string]interface{}{
			"Reviewed":     summary.Reviewed,
			"RatingCounts": summary.RatingCounts,
			"NothingDue":   summary.NothingDue,
		})
		return
	}

	card, err := s.session.Current()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Card":      card,
		"Reviewed":  s.session.Reviewed(),
		"Remaining": s.session.Remaining(),
	}
	if s.session.Revealed() {
		s.templates.ExecuteTemplate(w, "card_revealed", data)
	} else {
		s.templates.ExecuteTemplate(w, "card_front", data)
	}
}

func (s *Server) renderDeckList(w http.ResponseWriter) {
	rows, err := s.deckRows()
	if err != nil {
		log.Printf("Error loading decks: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "deck_list", map[string]interface{}{
		"Decks": rows,
	})
}

func (s *Server) renderStats(w http.ResponseWriter, r *http.Request, deckID string) {
	deck, err := s.db.GetDeckByID(deckID)
	if err != nil || deck == nil {
		http.NotFound(w, r)
		return
	}
	stats, err := s.db.GetDeckStats(deckID)
	if err != nil {
		log.Printf("Error loading stats for deck %s: %v", deckID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "stats", map[string]interface{}{
		"Deck":  deck,
		"Stats": stats,
	})
}
