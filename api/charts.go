package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/posture-data/posture.report/internal/httputil"
)

// sessionChartHandler renders a quick HTML line chart of one session's
// per-tick alignment confidence using go-echarts. Debugging-only endpoint
// (no auth) for eyeballing how long it took the operator to settle into a
// correct position. Ticks without a usable detection plot as gaps.
// Query params:
//   - session_id (required)
func (s *Server) sessionChartHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		httputil.WriteJSONError(w, http.StatusBadRequest, "session_id required")
		return
	}

	records, err := s.verdicts.ListBySession(sessionID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list verdicts: %v", err))
		return
	}
	if len(records) == 0 {
		httputil.WriteJSONError(w, http.StatusNotFound, "no verdicts logged for session")
		return
	}

	start := records[0].TickUnixNanos
	labels := make([]string, 0, len(records))
	confidence := make([]opts.LineData, 0, len(records))
	aligned := make([]opts.LineData, 0, len(records))
	for _, rec := range records {
		elapsed := time.Duration(rec.TickUnixNanos - start).Round(100 * time.Millisecond)
		labels = append(labels, elapsed.String())

		if rec.Confidence != nil {
			confidence = append(confidence, opts.LineData{Value: *rec.Confidence})
		} else {
			confidence = append(confidence, opts.LineData{Value: "-"})
		}
		alignedVal := 0.0
		if rec.Aligned {
			alignedVal = 1.0
		}
		aligned = append(aligned, opts.LineData{Value: alignedVal})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Live Alignment Session", Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Live alignment over time",
			Subtitle: fmt.Sprintf("session=%s ticks=%d", sessionID, len(records)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "confidence"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "elapsed"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("detector confidence", confidence)
	line.AddSeries("aligned", aligned, charts.WithLineChartOpts(opts.LineChart{Step: "end"}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
