// Command session-plot renders a PNG of one session's live alignment
// history from the screening DB: detector confidence per tick with aligned
// ticks marked. Offline companion to the /debug/charts/session endpoint.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/posture-data/posture.report/internal/db"
	storage "github.com/posture-data/posture.report/internal/pose/storage/sqlite"
	"github.com/posture-data/posture.report/internal/security"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	dbPath    = flag.String("db", "screening.db", "Path to the screening database")
	sessionID = flag.String("session", "", "Session ID to plot")
	outPath   = flag.String("out", "", "Output PNG path (default session-<id>.png)")
)

func main() {
	flag.Parse()

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: session-plot -db screening.db -session <id> [-out plot.png]")
		os.Exit(2)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer database.Close()

	records, err := storage.NewVerdictStore(database.DB).ListBySession(*sessionID)
	if err != nil {
		log.Fatalf("failed to list verdicts: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("no verdicts logged for session %s", *sessionID)
	}

	start := records[0].TickUnixNanos
	confidencePts := make(plotter.XYs, 0, len(records))
	alignedPts := make(plotter.XYs, 0, len(records))
	for _, rec := range records {
		x := time.Duration(rec.TickUnixNanos - start).Seconds()
		if rec.Confidence != nil {
			confidencePts = append(confidencePts, plotter.XY{X: x, Y: *rec.Confidence})
		}
		if rec.Aligned {
			alignedPts = append(alignedPts, plotter.XY{X: x, Y: 1})
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Live alignment, session %s", *sessionID)
	p.X.Label.Text = "elapsed (s)"
	p.Y.Label.Text = "detector confidence"
	p.Y.Min = 0
	p.Y.Max = 1.05

	if len(confidencePts) > 0 {
		confLine, err := plotter.NewLine(confidencePts)
		if err != nil {
			log.Fatalf("failed to build confidence line: %v", err)
		}
		confLine.Width = vg.Points(1)
		p.Add(confLine)
		p.Legend.Add("confidence", confLine)
	}

	if len(alignedPts) > 0 {
		alignedScatter, err := plotter.NewScatter(alignedPts)
		if err != nil {
			log.Fatalf("failed to build aligned scatter: %v", err)
		}
		alignedScatter.GlyphStyle.Color = color.RGBA{G: 180, A: 255}
		p.Add(alignedScatter)
		p.Legend.Add("aligned tick", alignedScatter)
	}

	out := *outPath
	if out == "" {
		out = fmt.Sprintf("session-%s.png", security.SanitizeFilename(*sessionID))
	}
	if err := security.ValidateExportPath(out); err != nil {
		log.Fatalf("refusing output path: %v", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, out); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("wrote %s (%d ticks, %d aligned)", out, len(records), len(alignedPts))
}
