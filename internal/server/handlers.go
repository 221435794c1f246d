package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// healthPingTimeout bounds the per-database ping of /health
const healthPingTimeout = 2 * time.Second

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Databases map[string]string `json:"databases"`
}

// handleHealth pings every database. One failed ping turns the response into a 503.
// The full integrity check lives in /api/system/status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Service:   "qualitycore",
		Version:   Version,
		Databases: make(map[string]string, len(s.databases)),
	}

	for _, db := range s.databases {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		err := db.Conn().PingContext(ctx)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("database", db.Name()).Msg("Health ping failed")
			resp.Databases[db.Name()] = "unreachable"
			resp.Status = "unhealthy"
			continue
		}
		resp.Databases[db.Name()] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
