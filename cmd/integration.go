package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marcus/notif/internal/config"
	"github.com/marcus/notif/internal/dateparse"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/output"
	"github.com/marcus/notif/internal/suggest"
	"github.com/marcus/notif/internal/webhook"
	"github.com/spf13/cobra"
)

var integrationCmd = &cobra.Command{
	Use:     "integration",
	Aliases: []string{"integrations", "int"},
	Short:   "Manage webhook integrations",
	GroupID: "integrations",
}

var integrationListCmd = &cobra.Command{
	Use:     "list [search]",
	Aliases: []string{"ls"},
	Short:   "List integrations, best name match first",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		typ, _ := cmd.Flags().GetString("type")
		if typ != "" && !models.IsValidIntegrationType(models.IntegrationType(typ)) {
			return fmt.Errorf("unknown integration type %q", typ)
		}
		src := func(ctx context.Context, typ models.IntegrationType, search string) ([]models.Integration, error) {
			return database.SearchIntegrations(typ, search)
		}
		list, err := suggest.Integrations(cmd.Context(), src, models.IntegrationType(typ), firstArg(args))
		if err != nil {
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if list == nil {
				list = []models.Integration{}
			}
			return output.JSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No integrations")
			return nil
		}
		for i := range list {
			fmt.Println(output.FormatIntegrationShort(&list[i]))
		}
		return nil
	},
}

var integrationAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"create"},
	Short:   "Add a webhook integration",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		url, _ := cmd.Flags().GetString("url")
		secret, _ := cmd.Flags().GetString("secret")
		typ, _ := cmd.Flags().GetString("type")
		i, err := database.CreateIntegration(args[0], models.IntegrationType(typ), url, secret)
		if err != nil {
			return err
		}
		output.Success("ADDED %s %s", i.ID, i.Name)
		return nil
	},
}

var integrationDeleteCmd = &cobra.Command{
	Use:     "delete <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete an integration and strip it from every action list",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		i, err := database.GetIntegration(args[0])
		if err != nil {
			return err
		}
		if err := database.DeleteIntegration(i.ID); err != nil {
			return err
		}
		output.Success("DELETED %s %s", output.ShortID(i.ID), i.Name)
		return nil
	},
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id|name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(getBaseDir())
			if err != nil {
				return err
			}
			defer database.Close()

			i, err := database.GetIntegration(args[0])
			if err != nil {
				return err
			}
			if err := database.SetIntegrationEnabled(i.ID, enabled); err != nil {
				return err
			}
			output.Success("%sD %s", strings.ToUpper(use), i.Name)
			return nil
		},
	}
}

var integrationTestCmd = &cobra.Command{
	Use:   "test <id|name>",
	Short: "Send a test event and record the connection attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		i, err := database.GetIntegration(args[0])
		if err != nil {
			return err
		}
		attempt, err := webhook.Test(cmd.Context(), database, i.ID, webhookOptions())
		if err != nil {
			return err
		}
		if attempt.Type == models.AttemptFailed {
			output.Error("test delivery to %s failed: %s", i.Name, attempt.Detail)
			return fmt.Errorf("test delivery failed")
		}
		output.Success("DELIVERED test event to %s", i.Name)
		return nil
	},
}

// webhookOptions reads dispatch settings from config and environment
func webhookOptions() webhook.Options {
	return webhook.Options{
		Timeout:        time.Duration(config.GetWebhookTimeout(getBaseDir())) * time.Second,
		FallbackSecret: config.GetWebhookSecret(getBaseDir()),
	}
}

var integrationAttemptsCmd = &cobra.Command{
	Use:   "attempts <id|name>",
	Short: "Show recent connection attempts, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		i, err := database.GetIntegration(args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		attempts, err := database.ListConnectionAttempts(i.ID, limit)
		if err != nil {
			return err
		}
		if since, _ := cmd.Flags().GetString("since"); since != "" {
			t, err := dateparse.ParseSince(since)
			if err != nil {
				return fmt.Errorf("--since: %w", err)
			}
			attempts = attemptsSince(attempts, t)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if attempts == nil {
				attempts = []models.ConnectionAttempt{}
			}
			return output.JSON(attempts)
		}
		if len(attempts) == 0 {
			fmt.Println("No connection attempts")
			return nil
		}
		for _, a := range attempts {
			fmt.Printf("%s  %s", webhook.FormatAttemptTime(a.Timestamp), output.FormatAttemptType(a.Type))
			if a.Detail != "" {
				fmt.Printf("  %s", a.Detail)
			}
			fmt.Println()
		}
		return nil
	},
}

// attemptsSince keeps the attempts at or after t
func attemptsSince(attempts []models.ConnectionAttempt, t time.Time) []models.ConnectionAttempt {
	var kept []models.ConnectionAttempt
	for _, a := range attempts {
		if !a.Timestamp.Before(t) {
			kept = append(kept, a)
		}
	}
	return kept
}

func init() {
	rootCmd.AddCommand(integrationCmd)
	integrationCmd.AddCommand(
		integrationListCmd,
		integrationAddCmd,
		integrationDeleteCmd,
		setEnabledCmd("enable", "Resume deliveries to an integration", true),
		setEnabledCmd("disable", "Pause deliveries to an integration", false),
		integrationTestCmd,
		integrationAttemptsCmd,
	)

	integrationListCmd.Flags().String("type", "", "Only this integration type (webhook)")
	integrationListCmd.Flags().Bool("json", false, "Output as JSON")

	integrationAddCmd.Flags().String("url", "", "Endpoint URL (http or https)")
	integrationAddCmd.Flags().String("secret", "", "HMAC signing secret")
	integrationAddCmd.Flags().String("type", string(models.DefaultIntegrationType), "Integration type")
	integrationAddCmd.MarkFlagRequired("url")

	integrationAttemptsCmd.Flags().Int("limit", 20, "Max attempts to show (0 for all)")
	integrationAttemptsCmd.Flags().Bool("json", false, "Output as JSON")
	integrationAttemptsCmd.Flags().String("since", "", "Only attempts since a date (2026-03-01, -7d, yesterday, monday)")
}
