package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

const defaultHistoryLimit = 50

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.adapter.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "service_unhealthy", "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", DB: "ok"})
}

func (s *Server) handleMigrations(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := s.adapter.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history_unavailable", "could not read migration history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"migrations": rows})
}

type statusResponse struct {
	Applied int      `json:"applied"`
	Pending []string `json:"pending"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	applied, err := s.adapter.AppliedIDs(r.Context())
	if err != nil {
		s.logger.Error("applied ids query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history_unavailable", "could not read migration history")
		return
	}

	pending := []string{}
	for _, unit := range s.units {
		if _, ok := applied[unit.ID()]; !ok {
			pending = append(pending, unit.ID())
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{Applied: len(applied), Pending: pending})
}
