package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict/registry"
	"github.com/sagerenn/mdxlookup/internal/httpx"
	"github.com/sagerenn/mdxlookup/internal/indexer"
	"github.com/sagerenn/mdxlookup/internal/observability"
	"github.com/sagerenn/mdxlookup/internal/service"
)

func main() {
	cfgPath := flag.String("config", "./configs/mdxlookup.yaml", "path to YAML or JSON config")
	reindex := flag.Bool("reindex", false, "drop and rebuild every dictionary store")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal("config", err)
	}
	if *reindex {
		cfg.Index.Reindex = true
	}

	log := observability.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results := indexer.New(cfg, log).Run(ctx, cfg.Dictionaries, cfg.Index.Reindex)
	available := 0
	for _, res := range results {
		if res.Available() {
			available++
		}
	}
	log.Info("indexing finished", "dicts", len(results), "available", available, "elapsed", time.Since(start))

	reg, err := registry.Open(cfg, log)
	if err != nil {
		fatal("registry", err)
	}
	defer reg.Close()

	svc := service.New(cfg, reg, log)
	h := httpx.NewRouter(svc, log, cfg)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout.Std(),
		WriteTimeout: cfg.WriteTimeout.Std(),
	}

	go func() {
		log.Info("server listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("server stopped")
}

func fatal(stage string, err error) {
	_, _ = os.Stderr.WriteString(stage + ": " + err.Error() + "\n")
	os.Exit(1)
}
