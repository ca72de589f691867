// Package api serves one game session over HTTP for browser
// frontends: read endpoints for the current snapshot and history,
// write endpoints to submit decisions and advance or reset the run,
// and a WebSocket stream pushing each new snapshot.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/croplab/veggiechain/internal/persistence"
	"github.com/croplab/veggiechain/internal/session"
	"github.com/croplab/veggiechain/internal/sim"
)

// Server serves a single session. The session itself is single-owner,
// so the server serializes every operation behind its own mutex.
type Server struct {
	Session *session.Session
	DB      *persistence.DB // optional run recorder; nil = off
	Port    int

	mu    sync.Mutex
	hub   *Hub
	runID uuid.UUID // current recording run; replaced on reset
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "recording", s.DB != nil)

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Handler builds the route table. Exposed so tests can drive the API
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	if s.hub == nil {
		s.hub = NewHub()
		go s.hub.Run()
	}
	if s.runID == uuid.Nil {
		// The first run records under the session's own id, which the
		// caller registered with BeginRun before serving.
		s.runID = s.Session.ID()
	}

	mux := http.NewServeMux()

	// Read endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/parameters", s.handleParameters)

	// Game operations.
	mux.HandleFunc("/api/v1/advance", s.handleAdvance)
	mux.HandleFunc("/api/v1/reset", s.handleReset)

	// Live snapshot stream.
	mux.HandleFunc("/api/v1/stream", s.hub.serveWS)

	return corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins;
// localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.Session.Current()
	turns := len(s.Session.History())
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"name":       "VeggieChain",
		"session":    s.Session.ID(),
		"turn":       snap.State.Turn,
		"turns":      turns,
		"cash":       snap.State.Cash,
		"profit_cum": snap.State.ProfitCum,
		"weather":    s.Session.WeatherEnabled(),
		"recording":  s.DB != nil,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.Session.Current()
	s.mu.Unlock()
	writeJSON(w, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := s.Session.History()
	s.mu.Unlock()
	writeJSON(w, history)
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.Session.Current()
	s.mu.Unlock()
	writeJSON(w, snap.Parameters)
}

// handleAdvance submits a full decision set and advances one turn. The
// response is the post-advance snapshot, which is also broadcast to
// stream clients.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var d sim.Decisions
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		http.Error(w, fmt.Sprintf("bad decisions: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if err := s.Session.SetDecisions(d.PlantArea, d.ShipQty, d.Price, d.DemandMarket); err != nil {
		s.mu.Unlock()
		var invalid *sim.InvalidInputError
		if errors.As(err, &invalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Session.Advance()
	snap := s.Session.Current()
	s.mu.Unlock()

	if s.DB != nil {
		if err := s.DB.RecordTurn(s.runID, snap); err != nil {
			slog.Error("record turn failed", "error", err, "turn", snap.State.Turn)
		}
	}

	if payload, err := json.Marshal(snap); err == nil {
		s.hub.Publish(payload)
	}

	writeJSON(w, snap)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	if s.DB != nil {
		// Flush the finished trail, then record post-reset turns under
		// a fresh run id so turn numbers restarting at 1 don't clobber
		// the old run.
		if err := s.DB.RecordHistory(s.runID, s.Session.History()); err != nil {
			slog.Error("flush run history failed", "error", err, "run", s.runID)
		}
		s.runID = uuid.New()
		if err := s.DB.BeginRun(s.runID, s.Session.Current().Parameters, s.Session.WeatherEnabled()); err != nil {
			slog.Error("begin run failed", "error", err, "run", s.runID)
		}
	}
	s.Session.Reset()
	snap := s.Session.Current()
	s.mu.Unlock()

	slog.Info("session reset", "session", s.Session.ID())

	if payload, err := json.Marshal(snap); err == nil {
		s.hub.Publish(payload)
	}

	writeJSON(w, snap)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
