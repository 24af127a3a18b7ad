// Applies the SQL files in the migrations directory, one transaction
// per file. Files are idempotent (CREATE IF NOT EXISTS), so rerunning
// the tool is safe.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

var pipelineTables = []string{"leads", "notification_outcomes", "tracking_events", "device_tokens"}

func main() {
	dir := flag.String("dir", "migrations", "directory of .sql migration files")
	status := flag.Bool("status", false, "report which pipeline tables exist instead of migrating")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}

	if *status {
		if err := printStatus(db); err != nil {
			log.Fatalf("status: %v", err)
		}
		return
	}

	applied, failed, err := applyDir(db, *dir)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("migrations finished: %d applied, %d failed", applied, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// printStatus reports, per pipeline table, whether it exists yet.
func printStatus(db *sql.DB) error {
	for _, table := range pipelineTables {
		var exists bool
		err := db.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM pg_tables WHERE schemaname = 'public' AND tablename = $1)",
			table).Scan(&exists)
		if err != nil {
			return err
		}
		state := "missing"
		if exists {
			state = "ok"
		}
		fmt.Printf("%-24s %s\n", table, state)
	}
	return nil
}

// applyDir runs every .sql file in dir, sorted by name, each in its
// own transaction so one bad file does not block the rest.
func applyDir(db *sql.DB, dir string) (applied, failed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return applied, failed, fmt.Errorf("reading %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}

		if err := applyOne(db, string(data)); err != nil {
			log.Printf("%s: %v", name, err)
			failed++
			continue
		}
		log.Printf("%s: applied", name)
		applied++
	}
	return applied, failed, nil
}

func applyOne(db *sql.DB, stmts string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmts); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
