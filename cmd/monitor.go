package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/output"
	"github.com/marcus/notif/pkg/monitor"
	"github.com/marcus/notif/pkg/monitor/keymap"
	"github.com/spf13/cobra"
)

// loadKeymap builds the registry with defaults plus overrides from .notif/keymap.json
func loadKeymap(baseDir string) (*keymap.Registry, error) {
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)

	cfg, err := keymap.LoadConfig(keymap.ConfigPath(baseDir))
	if err != nil {
		return km, fmt.Errorf("load keymap: %w", err)
	}
	if err := keymap.ApplyConfig(km, cfg); err != nil {
		return km, fmt.Errorf("keymap overrides: %w", err)
	}
	return km, nil
}

// writeExampleKeymap writes an example keymap.json unless one already exists
func writeExampleKeymap(baseDir string) (string, error) {
	path := keymap.ConfigPath(baseDir)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	}
	return path, keymap.SaveConfig(path, keymap.ExampleConfig())
}

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"tui"},
	Short:   "Interactive bundle page for editing notification behaviors",
	Long: `Launch the bundle page: every event type of a bundle with its behavior.

Key bindings:
  j/k            Move between event types
  e / Enter      Edit the selected event type
  D              Edit the bundle default behavior
  m / u / c      Mute, use default, or custom actions (in the editor)
  a / x          Add or remove an action
  t              Switch the action between email and integration
  r              Type a recipient to add or remove
  i              Select the next integration
  Ctrl+s         Save
  Esc            Close the editor
  ?              Toggle help
  q              Quit

Key bindings can be overridden in .notif/keymap.json.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		if initKeys, _ := cmd.Flags().GetBool("init-keymap"); initKeys {
			path, err := writeExampleKeymap(baseDir)
			if err != nil {
				return err
			}
			output.Success("Wrote %s", path)
			return nil
		}

		km, err := loadKeymap(baseDir)
		if err != nil {
			output.Warning("%v (using default keys)", err)
		}

		if keys, _ := cmd.Flags().GetBool("keys"); keys {
			fmt.Print(km.GenerateHelp())
			return nil
		}

		database, err := db.Open(baseDir)
		if err != nil {
			return err
		}
		defer database.Close()

		bundleName, _ := cmd.Flags().GetString("bundle")
		bundle, err := resolveBundle(database, bundleName)
		if err != nil {
			return err
		}

		model := monitor.NewModel(database, *bundle, km)
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running monitor: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringP("bundle", "b", "", "Bundle to show (default: configured bundle)")
	monitorCmd.Flags().Bool("keys", false, "Print the active key bindings and exit")
	monitorCmd.Flags().Bool("init-keymap", false, "Write an example .notif/keymap.json")
}
