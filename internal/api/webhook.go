package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/snare/internal/extractor"
)

const maxBodyBytes = 1 << 20

// ValidationError reports a required request field that is missing or not a
// string.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is required and must be a string", e.Field)
}

type webhookRequest struct {
	ConversationID string
	Message        string
}

type engagementMetrics struct {
	Turns           int   `json:"turns"`
	DurationSeconds int64 `json:"duration_seconds"`
}

type webhookResponse struct {
	ScamDetected          bool                   `json:"scam_detected"`
	AgentEngaged          bool                   `json:"agent_engaged"`
	EngagementMetrics     engagementMetrics      `json:"engagement_metrics"`
	ExtractedIntelligence extractor.Intelligence `json:"extracted_intelligence"`
	AgentReply            string                 `json:"agent_reply"`
}

type conversationResponse struct {
	ConversationID        string                 `json:"conversation_id"`
	Turns                 int                    `json:"turns"`
	StartedAt             time.Time              `json:"started_at"`
	DurationSeconds       int64                  `json:"duration_seconds"`
	ExtractedIntelligence extractor.Intelligence `json:"extracted_intelligence"`
}

func (s *Server) webhookProbe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Honeypot endpoint is live",
	})
}

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	req, err := decodeWebhook(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var verr *ValidationError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &verr):
			s.rejected("validation")
			respondError(w, http.StatusUnprocessableEntity, verr.Error())
		case errors.As(err, &tooLarge):
			s.rejected("too_large")
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		default:
			s.rejected("bad_json")
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	report := s.proc.ProcessTurn(r.Context(), req.ConversationID, req.Message)

	respondJSON(w, http.StatusOK, webhookResponse{
		ScamDetected: report.ScamDetected,
		AgentEngaged: report.AgentEngaged,
		EngagementMetrics: engagementMetrics{
			Turns:           report.Turns,
			DurationSeconds: report.DurationSeconds,
		},
		ExtractedIntelligence: report.Intel,
		AgentReply:            report.Reply,
	})
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, elapsed, ok := s.proc.Dossier(id)
	if !ok {
		respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	respondJSON(w, http.StatusOK, conversationResponse{
		ConversationID:        snap.ConversationID,
		Turns:                 snap.Turns,
		StartedAt:             snap.StartedAt.UTC(),
		DurationSeconds:       elapsed,
		ExtractedIntelligence: snap.Intel,
	})
}

// decodeWebhook reads a JSON object with string fields conversation_id and
// message. Unknown fields are ignored.
func decodeWebhook(body io.Reader) (webhookRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return webhookRequest{}, err
		}
		return webhookRequest{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	if raw == nil {
		return webhookRequest{}, errors.New("invalid JSON body: expected an object")
	}

	var req webhookRequest
	var err error
	if req.ConversationID, err = stringField(raw, "conversation_id"); err != nil {
		return webhookRequest{}, err
	}
	if req.Message, err = stringField(raw, "message"); err != nil {
		return webhookRequest{}, err
	}
	return req, nil
}

func stringField(raw map[string]json.RawMessage, name string) (string, error) {
	v, ok := raw[name]
	if !ok || string(v) == "null" {
		return "", &ValidationError{Field: name}
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &ValidationError{Field: name}
	}
	return s, nil
}
