package registry

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/store"
)

// Dictionary pairs a descriptor with its opened store. Store is nil when the
// dictionary is disabled or its store could not be opened.
type Dictionary struct {
	Config   config.DictConfig
	Language string
	Store    *store.Store
	Err      error
}

func (d *Dictionary) ID() string   { return d.Config.ID }
func (d *Dictionary) Name() string { return d.Config.Name }

func (d *Dictionary) Available() bool {
	return d.Config.IsEnabled() && d.Store != nil
}

// Registry keeps dictionaries in configuration order.
type Registry struct {
	mu          sync.RWMutex
	defaultLang string
	byID        map[string]*Dictionary
	order       []*Dictionary
}

func New(defaultLang string) *Registry {
	if defaultLang == "" {
		defaultLang = config.DefaultLanguage
	}
	return &Registry{
		defaultLang: defaultLang,
		byID:        make(map[string]*Dictionary),
	}
}

func (r *Registry) DefaultLanguage() string {
	return r.defaultLang
}

func (r *Registry) Add(d *Dictionary) error {
	if d == nil {
		return errors.New("dictionary is nil")
	}
	id := d.ID()
	if id == "" {
		return errors.New("dictionary id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[id]; exists {
		return errors.New("duplicate dictionary id: " + id)
	}
	d.Language = d.Config.Lang(r.defaultLang)
	r.byID[id] = d
	r.order = append(r.order, d)
	return nil
}

func (r *Registry) Get(id string) (*Dictionary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

func (r *Registry) List() []*Dictionary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Dictionary, 0, len(r.order))
	out = append(out, r.order...)
	return out
}

// Active returns the enabled dictionaries whose language matches lang, in
// configuration order. An empty lang means the default language. Unusable
// dictionaries are included so callers can report them.
func (r *Registry) Active(lang string) []*Dictionary {
	if strings.TrimSpace(lang) == "" {
		lang = r.defaultLang
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Dictionary, 0, len(r.order))
	for _, d := range r.order {
		if d.Config.IsEnabled() && SameLanguage(d.Language, lang) {
			out = append(out, d)
		}
	}
	return out
}

// Close closes every opened store.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, d := range r.order {
		if d.Store != nil {
			errs = append(errs, d.Store.Close())
			d.Store = nil
		}
	}
	return errors.Join(errs...)
}

// SameLanguage compares two language tags. Well-formed BCP 47 tags are
// compared in canonical form so that "EN" matches "en"; anything else must
// match byte for byte.
func SameLanguage(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.String() == tb.String()
}

// Open builds a registry from the configured dictionaries, opening the store
// of each enabled one. A store that fails to open leaves its dictionary in
// the registry without a store; lookups skip it.
func Open(cfg config.Config, log *observability.Logger) (*Registry, error) {
	reg := New(cfg.Query.DefaultLanguage)
	for _, dc := range cfg.Dictionaries {
		d := &Dictionary{Config: dc}
		if dc.IsEnabled() {
			open, closing := dc.Pattern()
			s, err := store.Open(cfg.StorePath(dc), store.Options{PatternOpen: open, PatternClose: closing})
			if err != nil {
				log.Warn("dictionary unavailable", "dict", dc.ID, "error", err)
				d.Err = err
			} else {
				d.Store = s
			}
		}
		if err := reg.Add(d); err != nil {
			if d.Store != nil {
				_ = d.Store.Close()
			}
			_ = reg.Close()
			return nil, err
		}
	}
	return reg, nil
}
