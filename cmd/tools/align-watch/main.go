// Command align-watch runs the live alignment loop from a terminal: grabs
// frames from a directory of captured images, sends them to the detector
// sidecar, and prints one verdict per tick. Useful for tuning thresholds
// without the capture UI. Optionally logs verdicts to the screening DB so
// the session chart and session-plot can render them afterwards.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/posture-data/posture.report/internal/config"
	"github.com/posture-data/posture.report/internal/db"
	"github.com/posture-data/posture.report/internal/pose/detect"
	"github.com/posture-data/posture.report/internal/pose/liveguard"
	storage "github.com/posture-data/posture.report/internal/pose/storage/sqlite"
)

var (
	framesDir   = flag.String("frames", "fixtures/frames", "Directory of captured frames to replay")
	detectorURL = flag.String("detector", "http://localhost:9000", "Base URL of the pose detector sidecar")
	view        = flag.String("view", "frontal", "Capture view: frontal or sagittal")
	configPath  = flag.String("config", "", "Path to a tuning config JSON")
	dbPath      = flag.String("db", "", "Screening DB to log verdicts into (optional)")
)

func main() {
	flag.Parse()

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	src, err := detect.NewFileFrameSource(*framesDir)
	if err != nil {
		log.Fatalf("failed to open frame source: %v", err)
	}
	if src.Len() == 0 {
		log.Fatalf("no frames found in %s", *framesDir)
	}

	detector := detect.NewHTTPDetector(*detectorURL, cfg.GetDetectorTimeout())

	var verdictStore *storage.VerdictStore
	sessionID := uuid.New().String()
	if *dbPath != "" {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}
		defer database.Close()
		verdictStore = storage.NewVerdictStore(database.DB)
		log.Printf("logging verdicts under session %s", sessionID)
	}

	onVerdict := func(v liveguard.Verdict) {
		if v.Confidence != nil {
			log.Printf("aligned=%v confidence=%.2f message=%q", v.Aligned, *v.Confidence, v.Message)
		} else {
			log.Printf("aligned=%v confidence=n/a message=%q", v.Aligned, v.Message)
		}

		if verdictStore != nil {
			rec := &storage.VerdictRecord{
				SessionID:  sessionID,
				View:       *view,
				Aligned:    v.Aligned,
				Message:    v.Message,
				Confidence: v.Confidence,
			}
			if err := verdictStore.Insert(rec); err != nil {
				log.Printf("failed to log verdict: %v", err)
			}
		}
	}

	poller := liveguard.NewPoller(src, detector, cfg, liveguard.View(*view), onVerdict)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("polling every %s (ctrl-c to stop)", cfg.GetPollInterval())
	if err := poller.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("poller failed: %v", err)
	}

	ran, skipped := poller.Stats()
	log.Printf("done: %d ticks ran, %d skipped", ran, skipped)
}
