package httpx

import (
	"encoding/json"
	"expvar"
	"net/http"
	"strings"
	"time"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/service"
)

// LuckyWordHeader carries the headword picked by /lucky.
const LuckyWordHeader = "X-Lucky-Word"

type Router struct {
	svc *service.Service
}

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewRouter(svc *service.Service, log *observability.Logger, cfg config.Config) http.Handler {
	r := &Router{svc: svc}
	limit := observability.RateLimitMiddleware(cfg.Query.RateLimit, cfg.Query.RateBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", r.handleHealth)
	mux.HandleFunc("/dicts", r.handleDicts)
	mux.Handle("/query", limit(http.HandlerFunc(r.handleQuery)))
	mux.Handle("/lucky", limit(http.HandlerFunc(r.handleLucky)))
	mux.Handle("/debug/vars", expvar.Handler())
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	h := observability.RecoveryMiddleware(log)(mux)
	h = observability.LoggingMiddleware(log)(h)
	return observability.RequestIDMiddleware(h)
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Time: time.Now().UTC()})
}

func (r *Router) handleDicts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, r.svc.List())
}

// handleQuery accepts the word and optional lang either as form fields
// (POST) or as URL parameters (GET).
func (r *Router) handleQuery(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if err := req.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form"})
		return
	}
	word := strings.TrimSpace(req.Form.Get("word"))
	if word == "" {
		word = strings.TrimSpace(req.Form.Get("q"))
	}
	if word == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing word"})
		return
	}
	writeText(w, http.StatusOK, r.svc.Query(req.Context(), word, req.Form.Get("lang")))
}

func (r *Router) handleLucky(w http.ResponseWriter, req *http.Request) {
	word, result := r.svc.Lucky(req.Context(), req.URL.Query().Get("lang"))
	if word != "" {
		w.Header().Set(LuckyWordHeader, word)
	}
	writeText(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(payload)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
