// Package store persists decoded dictionary entries in a per-dictionary
// SQLite file and answers headword lookups against it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const (
	table     = "MDX_INDEX"
	textIndex = "idx_text"
)

// ErrNotFound is returned by Open when no store file exists at the path.
var ErrNotFound = errors.New("store not found")

// Record is one stored sense. IDs increase in the order entries were read
// from the dictionary file.
type Record struct {
	ID   int64
	Text string
	Def  string
}

// Options configures lookups on an opened store.
type Options struct {
	// PatternOpen and PatternClose wrap a headword for LookupPattern.
	PatternOpen  string
	PatternClose string
}

// Store is a read-only handle on a built dictionary store. It is safe for
// concurrent use; every lookup takes its own connection from the pool.
type Store struct {
	path string
	db   *sql.DB
	opts Options
}

// Exists reports whether a store file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Open opens an existing store read-only.
func Open(path string, opts Options) (*Store, error) {
	if !Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{path: path, db: db, opts: opts}, nil
}

func (s *Store) Path() string {
	return s.path
}

// LookupExact returns every row whose text equals text, by ascending id.
func (s *Store) LookupExact(ctx context.Context, text string) ([]Record, error) {
	return s.query(ctx, sq.Eq{"text": text})
}

// LookupPattern returns rows whose text contains headword wrapped in the
// store's bracket pair, e.g. "examine【run-in】" for "run-in".
func (s *Store) LookupPattern(ctx context.Context, headword string) ([]Record, error) {
	if headword == "" {
		return nil, nil
	}
	needle := s.opts.PatternOpen + headword + s.opts.PatternClose
	return s.query(ctx, sq.Expr("instr(text, ?) > 0", needle))
}

func (s *Store) query(ctx context.Context, where sq.Sqlizer) ([]Record, error) {
	q, args, err := sq.Select("id", "text", "def").
		From(table).
		Where(where).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.path, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Text, &r.Def); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.db)
}

// RandomHeadword picks the text of a random row, or "" for an empty store.
func (s *Store) RandomHeadword(ctx context.Context) (string, error) {
	q, args, err := sq.Select("text").
		From(table).
		Where("id >= (abs(random()) % (SELECT max(id) FROM " + table + ")) + 1").
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", err
	}
	var text string
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return text, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countRows(ctx context.Context, db queryRower) (int64, error) {
	q, args, err := sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
