package models

import (
	"time"
)

// ActionKind represents the dispatch type of a notification action
type ActionKind string

const (
	KindEmailSubscription ActionKind = "EMAIL_SUBSCRIPTION"
	KindIntegration       ActionKind = "INTEGRATION"
)

// IntegrationType represents the kind of external delivery target
type IntegrationType string

const (
	IntegrationWebhook IntegrationType = "webhook"
)

// DefaultIntegrationType is used when an integration action has no type yet
const DefaultIntegrationType = IntegrationWebhook

// TemplateType distinguishes bundle-wide default behavior from a single event type
type TemplateType string

const (
	TemplateDefault      TemplateType = "default"
	TemplateNotification TemplateType = "notification"
)

// AttemptType is the outcome of a connection attempt against an integration
type AttemptType string

const (
	AttemptSuccess AttemptType = "success"
	AttemptFailed  AttemptType = "failed"
)

// IntegrationRef points an action at an integration
type IntegrationRef struct {
	Type IntegrationType `json:"type"`
	ID   string          `json:"id"`
	Name string          `json:"name,omitempty"`
}

// Action is a single notification dispatch target. Recipients is only
// meaningful for KindEmailSubscription, Integration only for KindIntegration.
type Action struct {
	Kind        ActionKind      `json:"kind"`
	Integration *IntegrationRef `json:"integration,omitempty"`
	Recipients  []string        `json:"recipients"`
}

// DefaultAction returns the shape seeded into an empty custom action list
func DefaultAction() Action {
	return Action{
		Kind:       KindEmailSubscription,
		Recipients: []string{},
	}
}

// Clone returns a deep copy of the action
func (a Action) Clone() Action {
	out := Action{Kind: a.Kind}
	if a.Integration != nil {
		ref := *a.Integration
		out.Integration = &ref
	}
	out.Recipients = make([]string, len(a.Recipients))
	copy(out.Recipients, a.Recipients)
	return out
}

// CloneActions returns a deep copy of an action list. A nil input yields an
// empty, non-nil list.
func CloneActions(actions []Action) []Action {
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}

// Facet is a bundle or application as presented in listings
type Facet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Notification is an event type together with its configured behavior
type Notification struct {
	ID                     string    `json:"id"`
	BundleID               string    `json:"bundle_id"`
	ApplicationID          string    `json:"application_id"`
	ApplicationDisplayName string    `json:"application_display_name"`
	EventTypeName          string    `json:"event_type_name"`
	EventTypeDisplayName   string    `json:"event_type_display_name"`
	Description            string    `json:"description,omitempty"`
	UseDefault             bool      `json:"use_default"`
	Actions                []Action  `json:"actions"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// DefaultBehavior is the bundle-wide action list applied to events using defaults
type DefaultBehavior struct {
	BundleID  string    `json:"bundle_id"`
	Actions   []Action  `json:"actions"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BehaviorGroup is a named, reusable action list within a bundle
type BehaviorGroup struct {
	ID          string    `json:"id"`
	BundleID    string    `json:"bundle_id"`
	DisplayName string    `json:"display_name"`
	Actions     []Action  `json:"actions"`
	CreatedAt   time.Time `json:"created_at"`
}

// Integration is an external delivery endpoint
type Integration struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      IntegrationType `json:"type"`
	URL       string          `json:"url"`
	Secret    string          `json:"-"`
	Enabled   bool            `json:"enabled"`
	CreatedAt time.Time       `json:"created_at"`
}

// Ref returns the action reference for this integration
func (i Integration) Ref() IntegrationRef {
	return IntegrationRef{Type: i.Type, ID: i.ID, Name: i.Name}
}

// ConnectionAttempt records one delivery attempt against an integration
type ConnectionAttempt struct {
	ID            int64       `json:"id"`
	IntegrationID string      `json:"integration_id"`
	Type          AttemptType `json:"type"`
	Detail        string      `json:"detail,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Config represents the project configuration
type Config struct {
	DefaultBundle string         `json:"default_bundle,omitempty"`
	ListenAddr    string         `json:"listen_addr,omitempty"`
	Webhook       *WebhookConfig `json:"webhook,omitempty"`
}

// WebhookConfig holds defaults applied to webhook integrations
type WebhookConfig struct {
	Secret         string `json:"secret,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// IsValidActionKind checks if an action kind is valid
func IsValidActionKind(k ActionKind) bool {
	return k == KindEmailSubscription || k == KindIntegration
}

// IsValidIntegrationType checks if an integration type is valid
func IsValidIntegrationType(t IntegrationType) bool {
	return t == IntegrationWebhook
}

// IsValidAttemptType checks if an attempt type is valid
func IsValidAttemptType(t AttemptType) bool {
	return t == AttemptSuccess || t == AttemptFailed
}
