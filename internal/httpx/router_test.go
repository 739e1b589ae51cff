package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict/registry"
	"github.com/sagerenn/mdxlookup/internal/indexer"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/resolver"
	"github.com/sagerenn/mdxlookup/internal/service"
)

func setupRouter(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "test.tsv")
	data := "hello\tworld\nhi\t@@@LINK=hello\nfoo\tbar\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	jaPath := filepath.Join(tmp, "ja.tsv")
	if err := os.WriteFile(jaPath, []byte("hello\tkonnichiwa\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Dictionaries = []config.DictConfig{
		{ID: "test", Name: "Test", Path: path},
		{ID: "ja", Name: "Japanese", Path: jaPath, Language: "ja"},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	log := observability.Discard()

	for _, res := range indexer.New(cfg, log).Run(context.Background(), cfg.Dictionaries, false) {
		if res.Err != nil {
			t.Fatal(res.Err)
		}
	}
	reg, err := registry.Open(cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = reg.Close() })

	return NewRouter(service.New(cfg, reg, log), log, cfg)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, nil)
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestQueryForm(t *testing.T) {
	r := setupRouter(t, nil)
	form := url.Values{"word": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := serve(r, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != "world" {
		t.Fatalf("expected redirect to resolve to %q, got %q", "world", got)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestQueryLanguage(t *testing.T) {
	r := setupRouter(t, nil)
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/query?word=hello&lang=ja", nil))
	if got := rr.Body.String(); got != "konnichiwa" {
		t.Fatalf("expected ja result, got %q", got)
	}
	rr = serve(r, httptest.NewRequest(http.MethodGet, "/query?word=hello", nil))
	if got := rr.Body.String(); got != "world" {
		t.Fatalf("expected default language result, got %q", got)
	}
}

func TestQueryNotFound(t *testing.T) {
	r := setupRouter(t, nil)
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/query?word=missing", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != resolver.NotFoundText {
		t.Fatalf("expected %q, got %q", resolver.NotFoundText, got)
	}
}

func TestQueryValidation(t *testing.T) {
	r := setupRouter(t, nil)
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/query", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	rr = serve(r, httptest.NewRequest(http.MethodDelete, "/query?word=hello", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestLucky(t *testing.T) {
	r := setupRouter(t, nil)
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/lucky", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get(LuckyWordHeader) == "" {
		t.Fatalf("expected %s header", LuckyWordHeader)
	}
	if rr.Body.String() == resolver.NotFoundText {
		t.Fatalf("lucky word should resolve, got %q", rr.Body.String())
	}
}

func TestDicts(t *testing.T) {
	r := setupRouter(t, nil)
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/dicts", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var dicts []service.DictInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &dicts); err != nil {
		t.Fatal(err)
	}
	if len(dicts) != 2 || dicts[0].ID != "test" || !dicts[0].Available || dicts[1].Language != "ja" {
		t.Fatalf("unexpected dicts: %+v", dicts)
	}
}

func TestRateLimit(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) {
		cfg.Query.RateLimit = 0.001
		cfg.Query.RateBurst = 1
	})
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/query?word=foo", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = serve(r, httptest.NewRequest(http.MethodGet, "/query?word=foo", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}

func TestStaticFallback(t *testing.T) {
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>ui</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := setupRouter(t, func(cfg *config.Config) { cfg.StaticDir = static })
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ui") {
		t.Fatalf("expected static index, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestDebugVars(t *testing.T) {
	r := setupRouter(t, nil)
	_ = serve(r, httptest.NewRequest(http.MethodGet, "/query?word=hello", nil))
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	for _, name := range []string{"requests_total", "queries_total", "dicts_indexed"} {
		if !strings.Contains(rr.Body.String(), name) {
			t.Fatalf("expected %s in expvar output, got %s", name, rr.Body.String())
		}
	}
}
