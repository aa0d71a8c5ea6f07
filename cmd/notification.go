package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/output"
	"github.com/marcus/notif/internal/selection"
	"github.com/spf13/cobra"
)

// notificationDetail is the JSON shape of notification show
type notificationDetail struct {
	models.Notification
	DefaultActions []models.Action `json:"default_actions"`
}

var notificationCmd = &cobra.Command{
	Use:     "notification",
	Aliases: []string{"notifications", "n"},
	Short:   "List, show and edit event type behavior",
	GroupID: "core",
}

var notificationListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the event types of a bundle with their behavior",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		bundleName, _ := cmd.Flags().GetString("bundle")
		bundle, err := resolveBundle(database, bundleName)
		if err != nil {
			return err
		}
		app, _ := cmd.Flags().GetString("app")
		list, err := database.ListNotifications(bundle.ID, app)
		if err != nil {
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if list == nil {
				list = []models.Notification{}
			}
			return output.JSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No notifications")
			return nil
		}
		for i := range list {
			fmt.Println(output.FormatNotificationShort(&list[i]))
		}
		return nil
	},
}

var notificationShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"view", "get"},
	Short:   "Show one event type with its actions",
	Long: `Show one event type with its actions. The id may be a unique prefix.
When the event type uses the bundle default, the default actions are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		jsonOut, _ := cmd.Flags().GetBool("json")
		n, err := database.GetNotification(args[0])
		if err != nil {
			if jsonOut {
				output.JSONError(output.ErrCodeNotFound, err.Error())
			}
			return err
		}
		d, err := database.GetDefaultBehavior(n.BundleID)
		if err != nil {
			return err
		}

		if jsonOut {
			return output.JSON(notificationDetail{Notification: *n, DefaultActions: d.Actions})
		}
		if md, _ := cmd.Flags().GetBool("markdown"); md {
			rendered, err := output.RenderMarkdown(output.NotificationMarkdown(n, d.Actions))
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			fmt.Println(rendered)
			return nil
		}
		fmt.Print(output.FormatNotificationLong(n, d.Actions))
		return nil
	},
}

var notificationEditOpts editOptions

var notificationEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change how an event type is delivered",
	Long: `Change how an event type is delivered.

The edit starts in mute mode. Pick a mode with --mode; adding or removing
actions implies custom mode, which starts from the stored custom actions.

Examples:
  notif notification edit 3f2a --mode default
  notif notification edit 3f2a --email Admins,Ops
  notif notification edit 3f2a --integration pager --remove 0
  notif notification edit 3f2a --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := editNotification(database, args[0], notificationEditOpts, os.Stdin)
		if err != nil {
			return err
		}
		output.Success("SAVED %s %s", output.ShortID(n.ID), output.FormatBehavior(output.BehaviorLabel(n)))
		if !n.UseDefault {
			for _, line := range output.IndentLines(output.FormatActions(n.Actions), 2) {
				fmt.Println(line)
			}
		}
		return nil
	},
}

// editNotification applies the edit flags (or the interactive forms) to a
// notification and stores the result
func editNotification(database *db.DB, id string, o editOptions, stdin io.Reader) (*models.Notification, error) {
	n, err := database.GetNotification(id)
	if err != nil {
		return nil, err
	}
	d, err := database.GetDefaultBehavior(n.BundleID)
	if err != nil {
		return nil, err
	}

	state := selection.NewForNotification(*n, d.Actions)
	if o.interactive {
		state, err = runInteractive(database, state)
	} else {
		var e edits
		if e, err = resolveEdits(database, o, stdin); err == nil {
			state, err = applyEdits(state, e)
		}
	}
	if err != nil {
		return nil, err
	}
	if err := checkSubmittable(database, state); err != nil {
		return nil, err
	}
	if err := database.SaveNotificationBehavior(n.ID, state.Submit()); err != nil {
		return nil, err
	}
	return database.GetNotification(n.ID)
}

func init() {
	rootCmd.AddCommand(notificationCmd)
	notificationCmd.AddCommand(notificationListCmd, notificationShowCmd, notificationEditCmd)

	notificationListCmd.Flags().StringP("bundle", "b", "", "Bundle name or id (default from config)")
	notificationListCmd.Flags().StringP("app", "a", "", "Only this application (name or id)")
	notificationListCmd.Flags().Bool("json", false, "Output as JSON")

	notificationShowCmd.Flags().Bool("json", false, "Output as JSON")
	notificationShowCmd.Flags().BoolP("markdown", "m", false, "Render as markdown")

	notificationEditOpts.bind(notificationEditCmd.Flags(), true)
}
