package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcus/notif/internal/config"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/output"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize a notif project",
	Long:    `Creates the local .notif directory and SQLite database and seeds the rhel bundle.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		if _, err := os.Stat(filepath.Join(baseDir, ".notif")); err == nil {
			output.Warning(".notif/ already exists")
			return nil
		}

		secret, _ := cmd.Flags().GetString("webhook-secret")
		database, err := initProject(baseDir, secret)
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Println("INITIALIZED .notif/")
		bundles, _ := database.ListBundles()
		for _, b := range bundles {
			fmt.Printf("Bundle: %s (%s)\n", b.Name, b.DisplayName)
		}
		return nil
	},
}

// initProject creates and seeds the database, ignoring .notif/ in git.
// A non-empty webhookSecret is stored as the fallback signing secret.
func initProject(baseDir, webhookSecret string) (*db.DB, error) {
	database, err := db.Initialize(baseDir)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if _, err := database.Seed(); err != nil {
		database.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}
	if webhookSecret != "" {
		if err := config.SetWebhookSecret(baseDir, webhookSecret); err != nil {
			database.Close()
			return nil, fmt.Errorf("save webhook secret: %w", err)
		}
	}
	if _, err := os.Stat(filepath.Join(baseDir, ".git")); err == nil {
		addToGitignore(filepath.Join(baseDir, ".gitignore"))
	}
	return database, nil
}

func addToGitignore(path string) {
	content, _ := os.ReadFile(path)
	contentStr := string(content)

	if strings.Contains(contentStr, ".notif/") {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	if len(contentStr) > 0 && !strings.HasSuffix(contentStr, "\n") {
		f.WriteString("\n")
	}
	f.WriteString(".notif/\n")
	fmt.Println("Added .notif/ to .gitignore")
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("webhook-secret", "", "Fallback HMAC secret for webhook integrations without one")
}
