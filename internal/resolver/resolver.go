// Package resolver answers headword queries across the active dictionaries,
// following @@@LINK= redirects up to a fixed depth.
package resolver

import (
	"context"
	"strings"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict"
	"github.com/sagerenn/mdxlookup/internal/dict/registry"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/store"
)

const (
	NotFoundText = "not found"
	Separator    = "\n\n=== Next Entry ===\n\n"
)

type Kind int

const (
	Found Kind = iota
	NotFound
	// TooManyRedirects ends a branch that went past the depth limit. It is
	// an outcome, not an error: sibling branches keep going.
	TooManyRedirects
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case TooManyRedirects:
		return "too many redirects"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one headword at one depth. Degraded is
// set when a lookup failed somewhere below, so the outcome may be missing
// definitions that a later attempt would find.
type Outcome struct {
	Kind        Kind
	Definitions []string
	Degraded    bool
}

type Resolver struct {
	reg      *registry.Registry
	maxDepth int
	log      *observability.Logger
}

func New(reg *registry.Registry, maxDepth int, log *observability.Logger) *Resolver {
	if maxDepth < 0 {
		maxDepth = config.DefaultMaxDepth
	}
	return &Resolver{reg: reg, maxDepth: maxDepth, log: log}
}

// Resolve returns every definition found for headword joined by Separator,
// or NotFoundText. It never fails: unusable dictionaries are skipped.
func (r *Resolver) Resolve(ctx context.Context, headword, lang string) string {
	text, _ := r.Answer(ctx, headword, lang)
	return text
}

// Answer is Resolve that also reports whether any dictionary lookup failed
// along the way. A degraded answer should not be reused for other callers.
func (r *Resolver) Answer(ctx context.Context, headword, lang string) (text string, degraded bool) {
	observability.QueriesTotal.Add(1)
	out := r.ResolveAt(ctx, strings.TrimSpace(headword), 0, lang)
	if out.Kind != Found {
		observability.QueriesNotFound.Add(1)
		return NotFoundText, out.Degraded
	}
	return strings.Join(out.Definitions, Separator), out.Degraded
}

// ResolveAt resolves headword as if reached through depth redirects.
func (r *Resolver) ResolveAt(ctx context.Context, headword string, depth int, lang string) Outcome {
	if depth > r.maxDepth {
		observability.RedirectsTooDeep.Add(1)
		r.log.Debug("redirect depth exceeded", "headword", headword, "depth", depth)
		return Outcome{Kind: TooManyRedirects}
	}
	if headword == "" {
		return Outcome{Kind: NotFound}
	}

	var defs, targets []string
	degraded := false
	for _, d := range r.reg.Active(lang) {
		if !d.Available() {
			r.log.Debug("skipping unavailable dictionary", "dict", d.ID(), "error", d.Err)
			continue
		}
		recs, err := r.lookup(ctx, d, headword)
		if err != nil {
			observability.StoreErrors.Add(1)
			degraded = true
			r.log.Warn("dictionary lookup failed", "dict", d.ID(), "headword", headword, "error", err)
			continue
		}
		for _, rec := range recs {
			if target, ok := dict.ParseRedirect(rec.Def); ok {
				targets = append(targets, target)
				continue
			}
			defs = append(defs, rec.Def)
		}
	}

	for _, target := range targets {
		observability.RedirectsFollowed.Add(1)
		out := r.ResolveAt(ctx, target, depth+1, lang)
		degraded = degraded || out.Degraded
		if out.Kind == Found {
			defs = append(defs, out.Definitions...)
		}
	}

	if len(defs) == 0 {
		return Outcome{Kind: NotFound, Degraded: degraded}
	}
	return Outcome{Kind: Found, Definitions: defs, Degraded: degraded}
}

// lookup runs the exact lookup and falls back to the bracket pattern when
// the dictionary has no row for headword at all.
func (r *Resolver) lookup(ctx context.Context, d *registry.Dictionary, headword string) ([]store.Record, error) {
	recs, err := d.Store.LookupExact(ctx, headword)
	if err != nil || len(recs) > 0 {
		return recs, err
	}
	return d.Store.LookupPattern(ctx, headword)
}
