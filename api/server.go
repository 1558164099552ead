// Package api exposes the screening engine over HTTP: final two-image
// analysis, one-shot live alignment scoring, session history, and debug
// charts. The UI and the capture hardware live elsewhere; this surface only
// moves landmark data and results.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/posture-data/posture.report/internal/config"
	"github.com/posture-data/posture.report/internal/db"
	"github.com/posture-data/posture.report/internal/httputil"
	"github.com/posture-data/posture.report/internal/monitoring"
	"github.com/posture-data/posture.report/internal/pose"
	"github.com/posture-data/posture.report/internal/pose/analysis"
	"github.com/posture-data/posture.report/internal/pose/liveguard"
	storage "github.com/posture-data/posture.report/internal/pose/storage/sqlite"
)

// Server wires the engine, the stores, and the tuning config behind a mux.
type Server struct {
	db        *db.DB
	sessions  *storage.SessionStore
	verdicts  *storage.VerdictStore
	evaluator *liveguard.Evaluator
	cfg       *config.TuningConfig
}

// NewServer creates the API server. A nil config uses built-in defaults.
func NewServer(database *db.DB, cfg *config.TuningConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Server{
		db:        database,
		sessions:  storage.NewSessionStore(database.DB),
		verdicts:  storage.NewVerdictStore(database.DB),
		evaluator: liveguard.NewEvaluator(cfg),
		cfg:       cfg,
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/api/analyze", s.analyzeHandler)
	mux.HandleFunc("/api/align", s.alignHandler)
	mux.HandleFunc("/api/sessions", s.listSessionsHandler)
	mux.HandleFunc("/api/sessions/", s.getSessionHandler)
	mux.HandleFunc("/api/params", s.paramsHandler)
	mux.HandleFunc("/debug/charts/session", s.sessionChartHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Posture Screening Server!"))
}

// planeInput is one captured image's detection: the landmark model plus the
// dimensions of the image it came from.
type planeInput struct {
	Landmarks pose.Skeleton `json:"landmarks"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
}

type analyzeRequest struct {
	Frontal        planeInput      `json:"frontal"`
	Sagittal       planeInput      `json:"sagittal"`
	Classification json.RawMessage `json:"classification,omitempty"`
	SubjectLabel   string          `json:"subject_label,omitempty"`
}

type analyzeResponse struct {
	SessionID string          `json:"session_id"`
	Result    analysis.Result `json:"result"`
}

// analyzeHandler runs the final two-image analysis and persists the result.
// A skeleton with no detected landmarks is a hard failure here: a final
// measurement cannot be produced from no data.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if req.Frontal.Landmarks.Empty() || req.Sagittal.Landmarks.Empty() {
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, "no pose detected in one or both images")
		return
	}
	if req.Frontal.Width <= 0 || req.Frontal.Height <= 0 || req.Sagittal.Width <= 0 || req.Sagittal.Height <= 0 {
		httputil.WriteJSONError(w, http.StatusBadRequest, "image dimensions must be positive")
		return
	}

	frontal := analysis.AnalyzeFrontal(req.Frontal.Landmarks, req.Frontal.Width, req.Frontal.Height)
	sagittal := analysis.AnalyzeSagittal(req.Sagittal.Landmarks, req.Sagittal.Width, req.Sagittal.Height)
	result := analysis.Aggregate(frontal, sagittal, req.Classification)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "marshal result: "+err.Error())
		return
	}
	session := &storage.Session{
		SubjectLabel:     req.SubjectLabel,
		Result:           resultJSON,
		CreatedUnixNanos: result.CreatedUnixNanos,
	}
	if err := s.sessions.Insert(session); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "persist session: "+err.Error())
		return
	}

	monitoring.Logf("api: stored session %s (%d frontal angles, %d sagittal angles)",
		session.SessionID, len(frontal.JointAngles), len(sagittal.JointAngles))

	httputil.WriteJSONOK(w, analyzeResponse{SessionID: session.SessionID, Result: result})
}

type alignRequest struct {
	Landmarks  pose.Skeleton  `json:"landmarks"`
	Confidence float64        `json:"confidence"`
	View       liveguard.View `json:"view"`
	SessionID  string         `json:"session_id,omitempty"`
}

// alignHandler scores one live frame's detection. When a session ID is
// supplied the verdict is also logged for the session's chart.
func (s *Server) alignHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.View != liveguard.ViewFrontal && req.View != liveguard.ViewSagittal {
		httputil.WriteJSONError(w, http.StatusBadRequest, "view must be 'frontal' or 'sagittal'")
		return
	}

	verdict := s.evaluator.Evaluate(req.Landmarks, req.Confidence, req.View)

	if req.SessionID != "" {
		rec := &storage.VerdictRecord{
			SessionID:  req.SessionID,
			View:       string(req.View),
			Aligned:    verdict.Aligned,
			Message:    verdict.Message,
			Confidence: verdict.Confidence,
		}
		if err := s.verdicts.Insert(rec); err != nil {
			monitoring.Logf("api: failed to log verdict: %v", err)
		}
	}

	httputil.WriteJSONOK(w, verdict)
}

func (s *Server) listSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	sessions, err := s.sessions.ListRecent(limit)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "list sessions: "+err.Error())
		return
	}
	httputil.WriteJSONOK(w, sessions)
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if sessionID == "" {
		httputil.WriteJSONError(w, http.StatusBadRequest, "session id required")
		return
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	httputil.WriteJSONOK(w, session)
}

// paramsHandler reports the effective live-guidance tuning values.
func (s *Server) paramsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"frontal_center_min":   s.cfg.GetFrontalCenterMin(),
		"frontal_center_max":   s.cfg.GetFrontalCenterMax(),
		"shoulder_delta_max":   s.cfg.GetShoulderDeltaMax(),
		"hip_delta_max":        s.cfg.GetHipDeltaMax(),
		"sagittal_center_min":  s.cfg.GetSagittalCenterMin(),
		"sagittal_center_max":  s.cfg.GetSagittalCenterMax(),
		"column_deviation_max": s.cfg.GetColumnDeviationMax(),
		"head_offset_max":      s.cfg.GetHeadOffsetMax(),
		"min_live_confidence":  s.cfg.GetMinLiveConfidence(),
		"visibility_threshold": s.cfg.GetVisibilityThreshold(),
		"poll_interval":        s.cfg.GetPollInterval().String(),
		"frame_grab_timeout":   s.cfg.GetFrameGrabTimeout().String(),
		"detector_timeout":     s.cfg.GetDetectorTimeout().String(),
	})
}
