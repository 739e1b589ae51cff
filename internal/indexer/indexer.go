// Package indexer builds the per-dictionary stores before queries are served.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict"
	"github.com/sagerenn/mdxlookup/internal/dict/loader"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/store"
)

// ErrIntegrityMismatch reports that the committed row count differs from
// the number of entries read. It is logged and never fails a build.
var ErrIntegrityMismatch = errors.New("integrity mismatch")

type Status string

const (
	StatusBuilt    Status = "built"
	StatusSkipped  Status = "skipped"
	StatusDisabled Status = "disabled"
	StatusFailed   Status = "failed"
)

// Result is the outcome of indexing one dictionary. KeptPrevious is set when
// a forced rebuild failed and the store from before is still in place.
type Result struct {
	Dict         config.DictConfig
	StorePath    string
	Status       Status
	Stats        store.BuildStats
	Err          error
	KeptPrevious bool
}

// Available reports whether the dictionary has a usable store.
func (r Result) Available() bool {
	return r.Status == StatusBuilt || r.Status == StatusSkipped || r.KeptPrevious
}

// OpenFunc opens the entry source of a dictionary.
type OpenFunc func(config.DictConfig) (dict.Scanner, error)

type Indexer struct {
	cfg  config.Config
	log  *observability.Logger
	open OpenFunc
}

func New(cfg config.Config, log *observability.Logger) *Indexer {
	return &Indexer{cfg: cfg, log: log, open: loader.Open}
}

// WithSource replaces the entry source opener, mainly for tests.
func (ix *Indexer) WithSource(open OpenFunc) *Indexer {
	ix.open = open
	return ix
}

// Run makes sure every enabled dictionary has a store. Existing stores are
// left untouched unless force is set, in which case they are rebuilt and
// replaced. A failure only affects the dictionary it happened in.
func (ix *Indexer) Run(ctx context.Context, dicts []config.DictConfig, force bool) []Result {
	results := make([]Result, 0, len(dicts))
	for _, d := range dicts {
		res := ix.index(ctx, d, force)
		switch res.Status {
		case StatusFailed:
			observability.DictsFailed.Add(1)
			ix.log.Error("dictionary indexing failed", "dict", d.ID, "path", d.Path, "error", res.Err)
		case StatusBuilt:
			observability.DictsIndexed.Add(1)
		}
		results = append(results, res)
	}
	return results
}

func (ix *Indexer) index(ctx context.Context, d config.DictConfig, force bool) Result {
	res := Result{Dict: d, StorePath: ix.cfg.StorePath(d)}
	if !d.IsEnabled() {
		res.Status = StatusDisabled
		return res
	}
	existed := store.Exists(res.StorePath)
	if existed && !force {
		ix.log.Debug("store exists, skipping", "dict", d.ID, "store", res.StorePath)
		res.Status = StatusSkipped
		return res
	}

	// A rebuild replaces the old store only once the new one is committed.
	stats, err := ix.build(ctx, d, res.StorePath)
	res.Stats = stats
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		if existed && store.Exists(res.StorePath) {
			res.KeptPrevious = true
			ix.log.Warn("rebuild failed, keeping previous store", "dict", d.ID, "store", res.StorePath)
		}
		return res
	}
	res.Status = StatusBuilt

	ix.log.Info("dictionary indexed",
		"dict", d.ID,
		"store", res.StorePath,
		"parsed", stats.Parsed,
		"skipped", stats.Skipped,
		"inserted", stats.Inserted,
		"rows", stats.Rows,
	)
	if err := checkIntegrity(stats); err != nil {
		ix.log.Warn("store row count differs from parsed entries", "dict", d.ID, "error", err)
	}
	return res
}

func (ix *Indexer) build(ctx context.Context, d config.DictConfig, path string) (store.BuildStats, error) {
	src, err := ix.open(d)
	if err != nil {
		return store.BuildStats{}, fmt.Errorf("%w: %v", store.ErrSourceRead, err)
	}
	defer src.Close()
	return store.Build(ctx, path, src)
}

// checkIntegrity compares every record the source held, including the ones
// the scanner dropped, with the rows that were committed.
func checkIntegrity(s store.BuildStats) error {
	if read := s.Parsed + s.Skipped; read != s.Rows {
		return fmt.Errorf("%w: read %d records (%d skipped), store has %d rows",
			ErrIntegrityMismatch, read, s.Skipped, s.Rows)
	}
	return nil
}
