package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "starlanes/internal/persistence/log"
	"starlanes/internal/persistence/store"
	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/session"
	"starlanes/internal/sim/tuning"
	"starlanes/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "session rng seed")
		noJournal  = flag.Bool("disable_journal", false, "disable the jump/trade journal")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	st, err := store.Open(filepath.Join(*dataDir, "save.db"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	var journal session.Journal
	if !*noJournal {
		jl := persistlog.NewJourneyLogger(*dataDir)
		defer jl.Close()
		journal = jl
	}

	sess := session.New(cats, tune, st, journal, *seed)
	if resumed, err := sess.Resume(); err != nil {
		logger.Fatalf("resume save: %v", err)
	} else if resumed {
		st := sess.Status()
		logger.Printf("resumed save: system=%s jumps=%d credits=%.2f", st.System, st.Jumps, st.Credits)
	}

	server := ws.NewServer(sess, cats, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", server.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)

	srv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("serve: %v", err)
	}
}
