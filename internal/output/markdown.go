package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/notif/internal/models"
	"golang.org/x/term"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth returns the stdout width, then $COLUMNS, then fallback.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return fallback
}

// plainOutput reports whether styled output should be avoided: NO_COLOR is
// set or stdout is not a terminal.
func plainOutput() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderMarkdown renders markdown for stdout, wrapping at the terminal width.
func RenderMarkdown(text string) (string, error) {
	return renderMarkdown(text, TerminalWidth(defaultMarkdownWidth), plainOutput())
}

func renderMarkdown(text string, width int, plain bool) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	width = max(width, minMarkdownWidth)

	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(rendered, "\n"), nil
}

// NotificationMarkdown describes a notification and the actions it would
// dispatch. When it uses the bundle default, defaults are listed instead.
func NotificationMarkdown(n *models.Notification, defaults []models.Action) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", n.EventTypeDisplayName)
	fmt.Fprintf(&sb, "*%s* · `%s` · **%s**\n\n", n.ApplicationDisplayName, n.EventTypeName, BehaviorLabel(n))
	if n.Description != "" {
		sb.WriteString(n.Description)
		sb.WriteString("\n\n")
	}

	list, heading := n.Actions, "Actions"
	if n.UseDefault {
		list, heading = defaults, "Default actions"
	}
	if !n.UseDefault && len(list) == 0 {
		return sb.String()
	}

	fmt.Fprintf(&sb, "## %s\n\n", heading)
	if len(list) == 0 {
		sb.WriteString("_No actions._\n")
	}
	for _, a := range list {
		fmt.Fprintf(&sb, "- %s\n", actionMarkdown(a))
	}
	return sb.String()
}

func actionMarkdown(a models.Action) string {
	if a.Kind == models.KindIntegration {
		if a.Integration == nil || a.Integration.ID == "" {
			return "**Integration**: _not selected_"
		}
		name := a.Integration.Name
		if name == "" {
			name = a.Integration.ID
		}
		return fmt.Sprintf("**Integration** (%s): %s", a.Integration.Type, name)
	}
	if len(a.Recipients) == 0 {
		return "**Email**: _no recipients_"
	}
	return "**Email**: " + strings.Join(a.Recipients, ", ")
}
