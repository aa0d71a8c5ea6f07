// Package output provides styled terminal output helpers (success, error,
// warning, notification and action formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/notif/internal/models"
)

var (
	// Styles
	titleStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	kindStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	behaviorStyles = map[string]lipgloss.Style{
		BehaviorMute:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		BehaviorDefault: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		BehaviorCustom:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

// Behavior labels as shown in listings
const (
	BehaviorMute    = "mute"
	BehaviorDefault = "default"
	BehaviorCustom  = "custom"
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeInvalidInput  = "invalid_input"
	ErrCodeInvalidState  = "invalid_state"
	ErrCodeDatabaseError = "database_error"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	data, _ := json.Marshal(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
	fmt.Println(string(data))
}

// BehaviorLabel summarizes how a stored notification dispatches
func BehaviorLabel(n *models.Notification) string {
	switch {
	case n.UseDefault:
		return BehaviorDefault
	case len(n.Actions) == 0:
		return BehaviorMute
	default:
		return BehaviorCustom
	}
}

// FormatBehavior formats a behavior label with color
func FormatBehavior(label string) string {
	style, ok := behaviorStyles[label]
	if !ok {
		return label
	}
	return style.Render(fmt.Sprintf("[%s]", label))
}

// FormatKind formats an action kind for display
func FormatKind(k models.ActionKind) string {
	switch k {
	case models.KindEmailSubscription:
		return kindStyle.Render("email")
	case models.KindIntegration:
		return kindStyle.Render("integration")
	default:
		return string(k)
	}
}

// FormatAction renders one action as a single line
func FormatAction(a models.Action) string {
	switch a.Kind {
	case models.KindIntegration:
		if a.Integration == nil || a.Integration.ID == "" {
			return FormatKind(a.Kind) + "  " + warningStyle.Render("(no integration selected)")
		}
		name := a.Integration.Name
		if name == "" {
			name = a.Integration.ID
		}
		return fmt.Sprintf("%s  %s %s", FormatKind(a.Kind), name, subtleStyle.Render(string(a.Integration.Type)))
	default:
		if len(a.Recipients) == 0 {
			return FormatKind(a.Kind) + "  " + subtleStyle.Render("(no recipients)")
		}
		return FormatKind(a.Kind) + "  " + strings.Join(a.Recipients, ", ")
	}
}

// FormatActions renders a numbered action list, one action per line
func FormatActions(actions []models.Action) []string {
	if len(actions) == 0 {
		return []string{subtleStyle.Render("(no actions)")}
	}
	lines := make([]string, len(actions))
	for i, a := range actions {
		lines[i] = fmt.Sprintf("%d. %s", i, FormatAction(a))
	}
	return lines
}

// FormatNotificationShort formats a notification in short format
func FormatNotificationShort(n *models.Notification) string {
	var parts []string
	parts = append(parts, titleStyle.Render(ShortID(n.ID)))
	parts = append(parts, n.EventTypeDisplayName)
	parts = append(parts, subtleStyle.Render(n.ApplicationDisplayName))
	parts = append(parts, FormatBehavior(BehaviorLabel(n)))
	if !n.UseDefault && len(n.Actions) > 0 {
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("%d actions", len(n.Actions))))
	}
	return strings.Join(parts, "  ")
}

// FormatNotificationLong formats a notification with its actions. defaults
// is listed when the notification uses the bundle default.
func FormatNotificationLong(n *models.Notification, defaults []models.Action) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", n.ID, n.EventTypeDisplayName)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Application: %s | Event type: %s\n", n.ApplicationDisplayName, n.EventTypeName))
	sb.WriteString(fmt.Sprintf("Behavior: %s\n", FormatBehavior(BehaviorLabel(n))))
	if !n.UpdatedAt.IsZero() {
		sb.WriteString(subtleStyle.Render("Updated " + FormatTimeAgo(n.UpdatedAt)))
		sb.WriteString("\n")
	}

	if n.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Description:"))
		sb.WriteString("\n")
		sb.WriteString(n.Description)
		sb.WriteString("\n")
	}

	switch BehaviorLabel(n) {
	case BehaviorDefault:
		sb.WriteString(SectionHeader("default actions"))
		sb.WriteString(strings.Join(IndentLines(FormatActions(defaults), 2), "\n"))
		sb.WriteString("\n")
	case BehaviorCustom:
		sb.WriteString(SectionHeader("actions"))
		sb.WriteString(strings.Join(IndentLines(FormatActions(n.Actions), 2), "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatIntegrationShort formats an integration in short format
func FormatIntegrationShort(i *models.Integration) string {
	state := successStyle.Render("enabled")
	if !i.Enabled {
		state = subtleStyle.Render("disabled")
	}
	return strings.Join([]string{
		titleStyle.Render(ShortID(i.ID)),
		i.Name,
		subtleStyle.Render(string(i.Type)),
		i.URL,
		state,
	}, "  ")
}

// FormatAttemptType colors a connection attempt outcome
func FormatAttemptType(t models.AttemptType) string {
	if t == models.AttemptSuccess {
		return successStyle.Render(string(t))
	}
	return errorStyle.Render(string(t))
}

// ShortID shortens a UUID to its first block
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nACTIONS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentLines indents each line by the specified number of spaces
func IndentLines(lines []string, spaces int) []string {
	indent := strings.Repeat(" ", spaces)
	result := make([]string, len(lines))
	for i, line := range lines {
		result[i] = indent + line
	}
	return result
}
