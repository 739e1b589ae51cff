package service

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/sagerenn/mdxlookup/internal/cache"
	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict/registry"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/resolver"
)

// Service fronts the resolver with a result cache and collapses identical
// concurrent queries into one resolution.
type Service struct {
	reg   *registry.Registry
	res   *resolver.Resolver
	cache *cache.Cache[string]
	group singleflight.Group
	log   *observability.Logger
}

type DictInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

func New(cfg config.Config, reg *registry.Registry, log *observability.Logger) *Service {
	return &Service{
		reg:   reg,
		res:   resolver.New(reg, cfg.Query.MaxRedirects, log),
		cache: cache.New[string](cfg.Query.CacheSize, cfg.Query.CacheTTL.Std()),
		log:   log,
	}
}

// Query resolves word in the dictionaries of lang. The result is either the
// joined definitions or resolver.NotFoundText.
func (s *Service) Query(ctx context.Context, word, lang string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return resolver.NotFoundText
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = s.reg.DefaultLanguage()
	}
	key := lang + "|" + word
	if v, ok := s.cache.Get(key); ok {
		return v
	}
	// The shared resolution outlives any single caller, so one caller
	// going away must not cancel it for the others.
	shared := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(key, func() (any, error) {
		out, degraded := s.res.Answer(shared, word, lang)
		if degraded {
			s.log.Debug("not caching degraded answer", "word", word, "lang", lang)
		} else {
			s.cache.Set(key, out)
		}
		return out, nil
	})
	return v.(string)
}

// Lucky resolves a random headword from the first usable dictionary of
// lang. It returns an empty word when no dictionary has entries.
func (s *Service) Lucky(ctx context.Context, lang string) (word, result string) {
	for _, d := range s.reg.Active(lang) {
		if !d.Available() {
			continue
		}
		w, err := d.Store.RandomHeadword(ctx)
		if err != nil {
			s.log.Warn("random headword failed", "dict", d.ID(), "error", err)
			continue
		}
		if w != "" {
			return w, s.Query(ctx, w, lang)
		}
	}
	return "", resolver.NotFoundText
}

func (s *Service) List() []DictInfo {
	dicts := s.reg.List()
	out := make([]DictInfo, 0, len(dicts))
	for _, d := range dicts {
		info := DictInfo{
			ID:        d.ID(),
			Name:      d.Name(),
			Language:  d.Language,
			Enabled:   d.Config.IsEnabled(),
			Available: d.Available(),
		}
		if d.Err != nil {
			info.Error = d.Err.Error()
		}
		out = append(out, info)
	}
	return out
}
