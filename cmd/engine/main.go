package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"jobcatalog-engine/internal/config"
	"jobcatalog-engine/internal/events"
	"jobcatalog-engine/internal/httpapi"
	"jobcatalog-engine/internal/run"
	"jobcatalog-engine/internal/store"
)

func main() {
	var (
		dataDir = flag.String("data-dir", envOr("JOBCATALOG_DATA_DIR", "."), "directory for the catalog db, config copy and raw archive")
		cfgPath = flag.String("config", "", "path to targets.yml (default: <data-dir>/targets.yml, bootstrapped from config/targets.yml)")
		addr    = flag.String("addr", "", "listen address (overrides app.addr)")
		once    = flag.Bool("once", false, "run a listing pass plus a detail pass and exit")
		reset   = flag.Bool("reset", false, "delete every stored posting before doing anything else")
	)
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// one engine per data dir; a second instance would race on sqlite
	// and double-fetch every target
	lock := flock.New(filepath.Join(*dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", lock.Path(), err)
	}
	if !locked {
		log.Fatalf("another engine instance is already running in %s", *dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	path := *cfgPath
	if path == "" {
		path, err = config.EnsureUserConfig(*dataDir, filepath.Join("config", "targets.yml"))
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", path, err)
	}
	if *addr != "" {
		cfg.App.Addr = *addr
	}

	st, err := store.Open(filepath.Join(*dataDir, "jobcatalog.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reset {
		n, err := st.Flush(ctx)
		if err != nil {
			log.Fatalf("reset: %v", err)
		}
		log.Printf("[engine] reset: deleted %d postings", n)
	}

	hub := events.NewHub()
	runner := run.New(cfg, st, hub, *dataDir)

	if *once {
		runOnce(ctx, runner)
		return
	}

	mux := httpapi.NewMux(httpapi.Deps{Store: st, Hub: hub, Runner: runner})
	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	ln, err := net.Listen("tcp", cfg.App.Addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[engine] listening on http://%s (data=%s)", cfg.App.Addr, *dataDir)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shctx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// runOnce is batch mode: one listing pass, one detail pass, summaries
// on stdout.
func runOnce(ctx context.Context, runner *run.Runner) {
	sum, err := runner.ListingPass(ctx)
	if err != nil {
		log.Fatalf("listing pass: %v", err)
	}
	printJSON(sum)

	dsum, err := runner.DetailPass(ctx)
	if err != nil {
		log.Fatalf("detail pass: %v", err)
	}
	printJSON(dsum)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	os.Stdout.Write(append(b, '\n'))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
