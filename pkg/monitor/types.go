package monitor

import (
	"time"

	"github.com/marcus/notif/internal/models"
)

// RefreshDataMsg carries refreshed bundle data
type RefreshDataMsg struct {
	Notifications []models.Notification
	Default       *models.DefaultBehavior
	Integrations  []models.Integration
	Err           error
	Timestamp     time.Time
}

// SaveResultMsg reports the outcome of saving the open behavior
type SaveResultMsg struct {
	Label string
	Err   error
}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}
