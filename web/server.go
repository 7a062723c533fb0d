// Package web serves the collected snapshots over HTTP for the dashboard
// and the overlay renderer.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/ekstremedia/pi-overlay-data/history"
)

// Server exposes the data directory and the sighting history as a JSON API.
type Server struct {
	dataDir string
	store   *history.Store
	started time.Time
	srv     *http.Server
}

// NewServer builds the API server. store may be nil, in which case the
// history endpoints report 404.
func NewServer(port int, dataDir string, store *history.Store) *Server {
	s := &Server{
		dataDir: dataDir,
		store:   store,
		started: time.Now(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/ships", s.snapshotHandler("ships"))
	mux.HandleFunc("/api/aurora", s.snapshotHandler("aurora"))
	mux.HandleFunc("/api/tides", s.snapshotHandler("tides"))
	mux.HandleFunc("/api/overlay", s.handleOverlay)
	mux.HandleFunc("/api/history/", s.handleHistory)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the configured HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.srv.Addr)
}

// WaitForShutdown blocks until SIGINT/SIGTERM or ctx cancellation, then
// drains the server with a 10 second grace period.
func (s *Server) WaitForShutdown(ctx context.Context) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigs:
		log.Printf("shutdown signal received")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	} else {
		log.Printf("server shut down successfully")
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DataDir       string `json:"data_dir"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		DataDir:       s.dataDir,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// snapshotHandler serves <provider>_current.json straight from the data
// directory. A missing snapshot means the provider has not run yet.
func (s *Server) snapshotHandler(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.dataDir, provider+"_current.json")
		buf, err := os.ReadFile(path)
		if err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no %s snapshot yet", provider))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf)
	}
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	buf, err := os.ReadFile(filepath.Join(s.dataDir, "combined_overlay.txt"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no overlay yet")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf)
}

// handleHistory serves /api/history/<provider>?hours=N from the sighting
// store. hours defaults to 24 and is capped at a week.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}
	provider := filepath.Base(r.URL.Path)
	if provider == "history" || provider == "." {
		writeError(w, http.StatusBadRequest, "missing provider")
		return
	}
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}
	if hours > 24*7 {
		hours = 24 * 7
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	sightings, err := s.store.RecentSightings(provider, since)
	if err != nil {
		log.Printf("history query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if sightings == nil {
		sightings = []history.Sighting{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Provider  string             `json:"provider"`
		Hours     int                `json:"hours"`
		Count     int                `json:"count"`
		Sightings []history.Sighting `json:"sightings"`
	}{provider, hours, len(sightings), sightings})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
