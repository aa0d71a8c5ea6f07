package api

import (
	"context"
	"net/http"

	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/suggest"
	"github.com/marcus/notif/internal/webhook"
)

// AttemptResponse is a connection attempt with its display timestamp and a
// one-line summary for log-style views.
type AttemptResponse struct {
	models.ConnectionAttempt
	Display string `json:"display"`
	Summary string `json:"summary"`
}

func toAttemptResponse(a models.ConnectionAttempt) AttemptResponse {
	return AttemptResponse{
		ConnectionAttempt: a,
		Display:           webhook.FormatAttemptTime(a.Timestamp),
		Summary:           webhook.FormatAttempt(a),
	}
}

func (s *Server) recipientSource() suggest.RecipientSource {
	return func(ctx context.Context, search string) ([]string, error) {
		return s.store.SearchRecipients(search)
	}
}

func (s *Server) integrationSource() suggest.IntegrationSource {
	return func(ctx context.Context, typ models.IntegrationType, search string) ([]models.Integration, error) {
		return s.store.SearchIntegrations(typ, search)
	}
}

func (s *Server) handleSearchRecipients(w http.ResponseWriter, r *http.Request) {
	names, err := suggest.Recipients(r.Context(), s.recipientSource(), r.URL.Query().Get("search"))
	if err != nil {
		writeStoreError(w, r, "search recipients", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleSearchIntegrations(w http.ResponseWriter, r *http.Request) {
	typ := models.IntegrationType(r.URL.Query().Get("type"))
	if typ != "" && !models.IsValidIntegrationType(typ) {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "unknown integration type: "+string(typ))
		return
	}
	found, err := suggest.Integrations(r.Context(), s.integrationSource(), typ, r.URL.Query().Get("search"))
	if err != nil {
		writeStoreError(w, r, "search integrations", err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteIntegration(id); err != nil {
		writeStoreError(w, r, "delete integration", err)
		return
	}
	logFor(r.Context()).Info("integration deleted", "integration", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	integration, err := s.store.GetIntegration(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, "get integration", err)
		return
	}
	attempts, err := s.store.ListConnectionAttempts(integration.ID, 0)
	if err != nil {
		writeStoreError(w, r, "list attempts", err)
		return
	}
	out := make([]AttemptResponse, len(attempts))
	for i, a := range attempts {
		out[i] = toAttemptResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTestIntegration(w http.ResponseWriter, r *http.Request) {
	attempt, err := webhook.Test(r.Context(), s.store, r.PathValue("id"), webhook.Options{
		Timeout:        s.config.WebhookTimeout,
		FallbackSecret: s.config.WebhookSecret,
	})
	if err != nil {
		writeStoreError(w, r, "test integration", err)
		return
	}
	failed := attempt.Type == models.AttemptFailed
	s.metrics.RecordTestDelivery(failed)
	if failed {
		logFor(r.Context()).Warn("test delivery failed", "integration", attempt.IntegrationID, "detail", attempt.Detail)
	}
	writeJSON(w, http.StatusOK, toAttemptResponse(*attempt))
}
