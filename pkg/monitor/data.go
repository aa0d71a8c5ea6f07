package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/models"
)

// FetchData loads everything the bundle page shows
func FetchData(database *db.DB, bundleID string) RefreshDataMsg {
	msg := RefreshDataMsg{Timestamp: time.Now()}

	notifications, err := database.ListNotifications(bundleID, "")
	if err != nil {
		msg.Err = fmt.Errorf("load notifications: %w", err)
		return msg
	}
	msg.Notifications = notifications

	def, err := database.GetDefaultBehavior(bundleID)
	if err != nil {
		msg.Err = fmt.Errorf("load default behavior: %w", err)
		return msg
	}
	msg.Default = def

	integrations, err := database.ListIntegrations("")
	if err != nil {
		msg.Err = fmt.Errorf("load integrations: %w", err)
		return msg
	}
	msg.Integrations = integrations
	return msg
}

// behaviorSummary describes a notification's configured behavior in one line
func behaviorSummary(n models.Notification) string {
	if n.UseDefault {
		return "default"
	}
	if len(n.Actions) == 0 {
		return "muted"
	}
	return actionsSummary(n.Actions)
}

// actionsSummary joins short descriptions of each action
func actionsSummary(list []models.Action) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, actionLabel(a))
	}
	return strings.Join(parts, ", ")
}

func actionLabel(a models.Action) string {
	if a.Kind == models.KindIntegration {
		if a.Integration == nil || a.Integration.ID == "" {
			return "integration (none)"
		}
		name := a.Integration.Name
		if name == "" {
			name = a.Integration.ID
		}
		return fmt.Sprintf("%s:%s", a.Integration.Type, name)
	}
	if len(a.Recipients) == 0 {
		return "email (no recipients)"
	}
	return "email " + strings.Join(a.Recipients, "+")
}
