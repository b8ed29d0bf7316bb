package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"prompt-tracker/internal/config"
	"prompt-tracker/internal/database"
)

// Applies migrations/*.sql (or the files given as arguments) in lexical order.
func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		matches, err := filepath.Glob("migrations/*.sql")
		if err != nil || len(matches) == 0 {
			log.Fatalf("Usage: %s [migration_file.sql ...] (no files found in migrations/)", os.Args[0])
		}
		files = matches
	}
	sort.Strings(files)

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	for _, file := range files {
		sqlContent, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("Failed to read migration file %s: %v", file, err)
		}

		fmt.Printf("Applying %s...\n", file)

		// Split SQL by semicolon and execute each statement
		statements := strings.Split(string(sqlContent), ";")
		for i, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(stmt); err != nil {
				log.Fatalf("Failed to execute statement %d of %s: %v", i+1, file, err)
			}
		}
		fmt.Printf("Applied %s\n\n", file)
	}

	fmt.Println("Migration completed successfully!")
}
