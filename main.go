package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/posture-data/posture.report/api"
	"github.com/posture-data/posture.report/internal/config"
	"github.com/posture-data/posture.report/internal/db"
	"github.com/posture-data/posture.report/internal/monitoring"
	"github.com/posture-data/posture.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbPath        = flag.String("db", "screening.db", "Path to the screening database")
	configPath    = flag.String("config", "", "Path to a tuning config JSON (defaults built in)")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migrations directory")
	adminRoutes   = flag.Bool("admin", false, "Mount the tailsql/backup debug routes")
	debugLog      = flag.Bool("debug", false, "Enable per-tick debug logging")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("posture.report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	monitoring.SetDebug(*debugLog)

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	server := api.NewServer(database, cfg)
	mux := server.ServeMux()
	if *adminRoutes {
		database.AttachAdminRoutes(mux)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: *listen, Handler: mux}

	wg.Add(1)
	go func() {
		defer wg.Done()
		monitoring.Logf("posture.report %s listening on %s", version.Version, *listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("shutting down")
	if err := httpServer.Shutdown(context.Background()); err != nil {
		monitoring.Logf("HTTP shutdown error: %v", err)
	}
	wg.Wait()
}
