package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sagerenn/mdxlookup/internal/dict"
)

var (
	ErrSourceRead  = errors.New("source read failed")
	ErrSchema      = errors.New("schema creation failed")
	ErrTransaction = errors.New("transaction failed")
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		def TEXT NOT NULL
	)`
	createIndex = `CREATE INDEX IF NOT EXISTS ` + textIndex + ` ON ` + table + `(text)`
	insertEntry = `INSERT INTO ` + table + ` (text, def) VALUES (?, ?)`
)

// BuildStats describes a finished build. Skipped counts source records the
// scanner dropped, when it reports them through dict.SkipCounter.
type BuildStats struct {
	Parsed   int64
	Skipped  int64
	Inserted int64
	Rows     int64
}

// Build writes every entry produced by src into a new store at path.
//
// The store is assembled in a temporary file next to path inside a single
// transaction and renamed into place only after the commit succeeds, so a
// failed build never touches path. An existing store at path is replaced.
func Build(ctx context.Context, path string, src dict.Scanner) (BuildStats, error) {
	var stats BuildStats

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return stats, fmt.Errorf("%w: create temp store: %v", ErrTransaction, err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()

	committed := false
	defer func() {
		if !committed {
			_ = Remove(tmpName)
		}
	}()

	db, err := sql.Open("sqlite", tmpName)
	if err != nil {
		return stats, fmt.Errorf("%w: open temp store: %v", ErrTransaction, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("%w: begin: %v", ErrTransaction, err)
	}
	if err := createSchema(ctx, tx); err != nil {
		_ = tx.Rollback()
		return stats, err
	}
	stmt, err := tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		_ = tx.Rollback()
		return stats, fmt.Errorf("%w: prepare insert: %v", ErrSchema, err)
	}
	defer stmt.Close()

	for src.Scan() {
		e := src.Entry()
		stats.Parsed++
		if _, err := stmt.ExecContext(ctx, e.Word, e.Definition); err != nil {
			_ = tx.Rollback()
			return stats, fmt.Errorf("%w: insert %q: %v", ErrTransaction, e.Word, err)
		}
		stats.Inserted++
	}
	if err := src.Err(); err != nil {
		_ = tx.Rollback()
		return stats, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	if sc, ok := src.(dict.SkipCounter); ok {
		stats.Skipped = sc.Skipped()
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("%w: commit: %v", ErrTransaction, err)
	}

	if stats.Rows, err = countRows(ctx, db); err != nil {
		return stats, fmt.Errorf("%w: count rows: %v", ErrTransaction, err)
	}
	if err := db.Close(); err != nil {
		return stats, fmt.Errorf("%w: close: %v", ErrTransaction, err)
	}
	// Journal files left by an older store at path must not be applied to
	// the new one.
	for _, suffix := range sideFiles {
		_ = os.Remove(path + suffix)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return stats, fmt.Errorf("%w: publish %s: %v", ErrTransaction, path, err)
	}
	committed = true
	return stats, nil
}

func createSchema(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("%w: create table: %v", ErrSchema, err)
	}
	if _, err := tx.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("%w: create index: %v", ErrSchema, err)
	}
	return nil
}

var sideFiles = []string{"-journal", "-wal", "-shm"}

// Remove deletes the store at path together with any SQLite side files.
func Remove(path string) error {
	err := os.Remove(path)
	for _, suffix := range sideFiles {
		_ = os.Remove(path + suffix)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
