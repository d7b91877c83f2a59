// Package daemon serves the meeting analysis HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
	"github.com/theirongolddev/mfocus/internal/pipeline"
)

const maxRequestBody = 64 << 10

// NoDataDetail is the error detail sent when a window has no activity.
const NoDataDetail = "No activity data found"

// Analyzer runs one analysis. *pipeline.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) (*model.Analysis, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr          string
	HistorySize   int
	DefaultUserID string
	// InputLocation reads request timestamps that carry no offset. Local when nil.
	InputLocation *time.Location
	Logger        *slog.Logger
}

// AnalyzeRequest is the POST /analyze-meeting body.
type AnalyzeRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Interval is one entry of interval_data.
type Interval struct {
	Time       string         `json:"time"`
	Category   model.Category `json:"category"`
	App        string         `json:"app"`
	Title      string         `json:"title"`
	EngagedPct float64        `json:"engaged_pct"`
}

// AnalyzeResponse is the POST /analyze-meeting success body.
type AnalyzeResponse struct {
	TotalDurationSec     float64                    `json:"total_duration_sec"`
	EngagementPercentage float64                    `json:"engagement_percentage"`
	CategoryDurations    map[model.Category]float64 `json:"category_durations"`
	AvgFocusSeconds      float64                    `json:"avg_focus_seconds"`
	IntervalData         []Interval                 `json:"interval_data"`
}

// Summary is a compact record of one completed analysis.
type Summary struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	SessionID     string    `json:"session_id,omitempty"`
	EngagementPct float64   `json:"engagement_percentage"`
	AvgFocusSec   float64   `json:"avg_focus_seconds"`
	Events        int       `json:"events"`
}

// Event is emitted whenever an analysis finishes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Summary   Summary   `json:"summary"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Requests        int64     `json:"requests"`
	Failures        int64     `json:"failures"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the HTTP API.
type Service struct {
	cfg      Config
	analyzer Analyzer
	logger   *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	requests    int64
	failures    int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, analyzer Analyzer) *Service {
	if cfg.HistorySize < 1 {
		cfg.HistorySize = 50
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		analyzer:  analyzer,
		logger:    logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the API routes wrapped in permissive CORS.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/test-connection", s.handleTestConnection)
	mux.HandleFunc("/analyze-meeting", s.handleAnalyze)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return withCORS(mux)
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("daemon listening", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleTestConnection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Backend is running",
	})
}

func (s *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var body AnalyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	start, err := pipeline.ParseTimestamp(body.StartTime, s.cfg.InputLocation)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "start_time: "+err.Error())
		return
	}
	end, err := pipeline.ParseTimestamp(body.EndTime, s.cfg.InputLocation)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "end_time: "+err.Error())
		return
	}
	if !end.After(start) {
		writeDetail(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	userID := strings.TrimSpace(body.UserID)
	if userID == "" {
		userID = s.cfg.DefaultUserID
	}
	req := pipeline.Request{Start: start, End: end, UserID: userID, SessionID: body.SessionID}

	result, err := s.analyzer.Analyze(r.Context(), req)
	s.recordRequest(err)
	switch {
	case errors.Is(err, pipeline.ErrNoData):
		writeDetail(w, http.StatusNotFound, NoDataDetail)
		return
	case err != nil:
		s.logger.Error("analysis failed", "start", start, "end", end, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}

	s.publishEvent(Event{
		Type:      "analysis",
		Timestamp: time.Now(),
		Summary:   summarize(req, result),
	})
	writeJSON(w, http.StatusOK, NewAnalyzeResponse(result))
}

// NewAnalyzeResponse converts an analysis to its wire form.
func NewAnalyzeResponse(a *model.Analysis) AnalyzeResponse {
	intervals := make([]Interval, 0, len(a.Intervals))
	for _, b := range a.Intervals {
		intervals = append(intervals, Interval{
			Time:       b.Label,
			Category:   b.Category,
			App:        b.App,
			Title:      b.Title,
			EngagedPct: b.EngagedPct,
		})
	}
	durations := a.CategoryDurations
	if durations == nil {
		durations = map[model.Category]float64{}
	}
	return AnalyzeResponse{
		TotalDurationSec:     a.TotalDurationSec,
		EngagementPercentage: a.EngagementPct,
		CategoryDurations:    durations,
		AvgFocusSeconds:      a.AvgFocusSec,
		IntervalData:         intervals,
	}
}

func summarize(req pipeline.Request, a *model.Analysis) Summary {
	return Summary{
		Start:         a.Start,
		End:           a.End,
		SessionID:     req.SessionID,
		EngagementPct: a.EngagementPct,
		AvgFocusSec:   a.AvgFocusSec,
		Events:        len(a.Events),
	}
}

func (s *Service) recordRequest(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if err != nil && !errors.Is(err, pipeline.ErrNoData) {
		s.failures++
		s.lastError = err.Error()
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.HistorySize {
		s.events = s.events[len(s.events)-s.cfg.HistorySize:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Requests:        s.requests,
		Failures:        s.failures,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
