package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// StatusServer exposes loop health and the last extracted prices over HTTP.
type StatusServer struct {
	poller      *Poller
	interval    time.Duration
	statusToken string // if non-empty, /status requires Authorization: Bearer <token>
}

func NewStatusServer(poller *Poller, cfg *Config) *StatusServer {
	return &StatusServer{
		poller:      poller,
		interval:    cfg.PollInterval(),
		statusToken: cfg.StatusToken,
	}
}

func (ss *StatusServer) Start(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", ss.handleStatus)
	mux.HandleFunc("/health", ss.handleHealth)

	addr := fmt.Sprintf("localhost:%d", port)
	go func() {
		log.Infof("status endpoint at http://%s/status", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("status server error")
		}
	}()
}

func (ss *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := ss.poller.Status()

	// Stale if the loop hasn't completed a cycle within three intervals.
	if !status.LastCycle.IsZero() && time.Since(status.LastCycle) > 3*ss.interval {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","reason":"poll loop stale"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func (ss *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if ss.statusToken != "" {
		if r.Header.Get("Authorization") != "Bearer "+ss.statusToken {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ss.poller.Status())
}
