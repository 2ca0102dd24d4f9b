package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"voxelgate.io/internal/gate"
	"voxelgate.io/internal/gate/rates"
	"voxelgate.io/internal/persistence/indexdb"
	persistlog "voxelgate.io/internal/persistence/log"
	"voxelgate.io/internal/transport/ws"
	"voxelgate.io/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite verdict index")

		cleanupEvery = flag.Duration("cleanup_every", time.Minute, "rate-limit cleanup interval")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[gateway] ", log.LstdFlags|log.Lmicroseconds)

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

	_ = os.MkdirAll(*dataDir, 0o755)

	limiter := rates.NewLimiter(time.Duration(tune.RateLimits.RetentionSeconds) * time.Second)
	gw := gate.New(tune, limiter)

	var sinks []ws.VerdictSink

	verdictLog := persistlog.NewVerdictLogger(*dataDir)
	defer verdictLog.Close()
	sinks = append(sinks, verdictLog)

	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "verdicts.db"))
		if err != nil {
			logger.Fatalf("open verdict index: %v", err)
		}
		defer idx.Close()
		sinks = append(sinks, idx)
	}

	wsServer := ws.NewServer(gw, logger, sinks...)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The host owns the cleanup cadence; without this loop the counter
	// set grows with every distinct (player, kind) pair.
	go func() {
		ticker := time.NewTicker(*cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := gw.CleanupRateLimits(); removed > 0 {
					logger.Printf("rate-limit cleanup: removed %d idle entries", removed)
				}
			}
		}
	}()

	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
