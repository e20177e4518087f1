package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":   "healthy",
		"service":  "rotor",
		"strategy": s.strategy,
		"run_id":   s.engine.RunID(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handlePositions returns the open positions and the cash fraction.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"positions": s.engine.Positions(),
		"cash":      s.engine.Cash(),
		"regime":    s.engine.LastRegime(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleLatestPlan returns the target weights of the most recent
// rebalance pass. An empty plan is the defensive all-cash stance.
func (s *Server) handleLatestPlan(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"plan":   s.engine.LastPlan(),
		"regime": s.engine.LastRegime(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleRecentPasses returns the latest journaled evaluation passes.
func (s *Server) handleRecentPasses(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusServiceUnavailable, "journal not configured")
		return
	}

	passes, err := s.journal.RecentPasses(limitParam(r, 50))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read journal passes")
		s.writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"passes": passes})
}

// handleRecentOrders returns the latest journaled orders.
func (s *Server) handleRecentOrders(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusServiceUnavailable, "journal not configured")
		return
	}

	orders, err := s.journal.RecentOrders(limitParam(r, 50))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read journal orders")
		s.writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// limitParam reads the ?limit= query parameter, clamped to [1, 500].
func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > 500 {
		return 500
	}
	return n
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
