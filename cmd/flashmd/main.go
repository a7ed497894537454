package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flashmd/internal/config"
	"github.com/conorfennell/flashmd/internal/gitsource"
	"github.com/conorfennell/flashmd/internal/storage"
	"github.com/conorfennell/flashmd/internal/sync"
	"github.com/conorfennell/flashmd/internal/web"
)

func main() {
	flags := pflag.NewFlagSet("flashmd", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to a YAML config file")
	importPath := flags.String("import", "", "Import a markdown file or directory and exit")
	fromGit := flags.String("from-git", "", "Clone or pull a git repository of decks, import it, and exit")
	list := flags.Bool("list", false, "List decks with their due counts and exit")
	flags.String("db_path", "", "Path to the SQLite database file")
	flags.String("listen", "", "Address for the web UI")
	flags.String("repos_dir", "", "Cache directory for git deck repositories")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch {
	case *importPath != "":
		imported, err := sync.ImportPath(db, *importPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d deck(s).\n", imported)

	case *fromGit != "":
		localPath, err := gitsource.Fetch(cfg.ReposDir, *fromGit)
		if err != nil {
			log.Fatalf("Failed to fetch %s: %v", *fromGit, err)
		}
		imported, err := sync.ImportPath(db, localPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d deck(s) from %s.\n", imported, *fromGit)

	case *list:
		decks, err := db.GetAllDecks()
		if err != nil {
			log.Fatalf("Failed to list decks: %v", err)
		}
		if len(decks) == 0 {
			fmt.Println("No decks. Import one with --import <file.md>.")
			return
		}
		for _, deck := range decks {
			stats, err := db.GetDeckStats(deck.ID)
			if err != nil {
				log.Fatalf("Failed to load stats for %s: %v", deck.Title, err)
			}
			fmt.Printf("%-40s %3d due / %3d cards\n", deck.Title, stats.Due, stats.Total)
		}

	default:
		server := web.NewServer(db)
		log.Printf("flashmd listening on http://%s", cfg.Listen)
		if err := http.ListenAndServe(cfg.Listen, server); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}
}
