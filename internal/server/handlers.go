package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mcgo/investment-calculator/internal/config"
	"github.com/mcgo/investment-calculator/internal/domain"
	"github.com/mcgo/investment-calculator/internal/simulation"
)

type simulateResponse struct {
	Success   bool                 `json:"success"`
	Data      *domain.EngineOutput `json:"data,omitempty"`
	Error     string               `json:"error,omitempty"`
	Field     string               `json:"field,omitempty"`
	Cached    bool                 `json:"cached"`
	RequestID string               `json:"request_id"`
	Timestamp string               `json:"timestamp"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := s.log.With().Str("request_id", requestID).Logger()

	params := domain.DefaultParameters()
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.respond(w, http.StatusBadRequest, simulateResponse{
			Error:     "invalid request body",
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	key := Fingerprint(params)
	if output, ok := s.cache.Get(key); ok {
		log.Debug().Str("fingerprint", key).Msg("serving cached simulation result")
		s.respond(w, http.StatusOK, simulateResponse{
			Success:   true,
			Data:      output,
			Cached:    true,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	output, err := s.run(r.Context(), params)
	if err != nil {
		s.respondError(w, requestID, err, log)
		return
	}
	log.Info().Int64("elapsed_ms", output.ElapsedMillis).Msg("simulation served")

	s.cache.Put(key, output)
	s.respond(w, http.StatusOK, simulateResponse{
		Success:   true,
		Data:      output,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) respondError(w http.ResponseWriter, requestID string, err error, log zerolog.Logger) {
	resp := simulateResponse{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		resp.Error = vErr.Error()
		resp.Field = vErr.Field
		s.respond(w, http.StatusBadRequest, resp)
	case errors.Is(err, simulation.ErrTimeout):
		resp.Error = "simulation timed out; retry with fewer iterations"
		s.respond(w, http.StatusGatewayTimeout, resp)
	case errors.Is(err, simulation.ErrTrialFailed):
		resp.Error = "simulation failed; please retry"
		s.respond(w, http.StatusInternalServerError, resp)
	default:
		// Internal fault detail is never surfaced to callers.
		log.Error().Err(err).Msg("simulation failed")
		resp.Error = "internal error; please retry"
		s.respond(w, http.StatusInternalServerError, resp)
	}
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"success": true,
		"presets": config.Presets(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}
