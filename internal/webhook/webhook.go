// Package webhook sends signed test deliveries to integrations and records
// the outcome as connection attempts.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marcus/notif/internal/models"
)

// DefaultTimeout bounds a single delivery
const DefaultTimeout = 10 * time.Second

// Header names set on every delivery
const (
	HeaderTimestamp = "X-Notif-Timestamp"
	HeaderSignature = "X-Notif-Signature"
)

// attemptLayout renders attempt timestamps, e.g. "Mar 4, 09:15:02 UTC"
const attemptLayout = "Jan 2, 15:04:05"

// Payload is the webhook POST body
type Payload struct {
	Version       string        `json:"version"`
	ID            string        `json:"id"`
	Timestamp     string        `json:"timestamp"`
	IntegrationID string        `json:"integration_id"`
	Bundle        string        `json:"bundle"`
	Application   string        `json:"application"`
	EventType     string        `json:"event_type"`
	Events        []EventDetail `json:"events"`
}

// EventDetail is one event inside a payload
type EventDetail struct {
	Metadata map[string]string `json:"metadata"`
	Payload  map[string]string `json:"payload"`
}

// BuildPayload builds a test delivery for integration. n supplies the
// event type; a nil notification produces a generic test event.
func BuildPayload(integration models.Integration, n *models.Notification) Payload {
	now := time.Now().UTC()
	p := Payload{
		Version:       "v1.1.0",
		ID:            fmt.Sprintf("test-%d", now.UnixNano()),
		Timestamp:     now.Format(time.RFC3339),
		IntegrationID: integration.ID,
		Bundle:        "console",
		Application:   "integrations",
		EventType:     "integration-test",
		Events: []EventDetail{{
			Metadata: map[string]string{},
			Payload:  map[string]string{"message": "Integration test from notif"},
		}},
	}
	if n != nil {
		p.Bundle = n.BundleID
		p.Application = n.ApplicationDisplayName
		p.EventType = n.EventTypeName
		p.Events[0].Payload["event_type"] = n.EventTypeDisplayName
	}
	return p
}

// Sign returns the signature header value for body sent at unixTS
func Sign(secret, unixTS string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(unixTS))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Dispatch performs a synchronous HTTP POST to url.
// Returns nil on success (2xx status).
func Dispatch(ctx context.Context, url, secret string, payload Payload) error {
	return dispatch(ctx, &http.Client{Timeout: DefaultTimeout}, url, secret, payload)
}

func dispatch(ctx context.Context, client *http.Client, url, secret string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "notif-webhook/1")

	unixTS := fmt.Sprintf("%d", time.Now().Unix())
	req.Header.Set(HeaderTimestamp, unixTS)
	if secret != "" {
		req.Header.Set(HeaderSignature, Sign(secret, unixTS, body))
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// Store is the storage needed to test an integration
type Store interface {
	GetIntegration(idOrName string) (*models.Integration, error)
	RecordConnectionAttempt(integrationID string, typ models.AttemptType, detail string) (*models.ConnectionAttempt, error)
}

// Options tune Test. Zero values use DefaultTimeout and no fallback secret.
type Options struct {
	Timeout        time.Duration
	FallbackSecret string
}

// Test sends a test delivery to an integration and records the outcome.
// A failed delivery is recorded and returned in the attempt, not as an error;
// the error reports lookup or storage failures.
func Test(ctx context.Context, store Store, integrationID string, opts Options) (*models.ConnectionAttempt, error) {
	integration, err := store.GetIntegration(integrationID)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	secret := integration.Secret
	if secret == "" {
		secret = opts.FallbackSecret
	}

	typ, detail := models.AttemptSuccess, ""
	switch {
	case !integration.Enabled:
		typ, detail = models.AttemptFailed, "integration is disabled"
	default:
		client := &http.Client{Timeout: timeout}
		if err := dispatch(ctx, client, integration.URL, secret, BuildPayload(*integration, nil)); err != nil {
			typ, detail = models.AttemptFailed, err.Error()
		}
	}
	return store.RecordConnectionAttempt(integration.ID, typ, detail)
}

// FormatAttemptTime renders an attempt timestamp in UTC
func FormatAttemptTime(t time.Time) string {
	return t.UTC().Format(attemptLayout) + " UTC"
}

// FormatAttempt renders one attempt as a single line
func FormatAttempt(a models.ConnectionAttempt) string {
	var sb strings.Builder
	sb.WriteString(FormatAttemptTime(a.Timestamp))
	sb.WriteString("  ")
	sb.WriteString(string(a.Type))
	if a.Detail != "" {
		sb.WriteString("  ")
		sb.WriteString(a.Detail)
	}
	return sb.String()
}
