package cmd

import (
	"context"
	"fmt"

	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/output"
	"github.com/marcus/notif/internal/suggest"
	"github.com/spf13/cobra"
)

var recipientCmd = &cobra.Command{
	Use:     "recipient",
	Aliases: []string{"recipients"},
	Short:   "Manage known email recipients",
	GroupID: "integrations",
}

var recipientAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Register users or groups as known recipients",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		for _, name := range args {
			if err := database.AddRecipient(name); err != nil {
				return err
			}
		}
		output.Success("ADDED %d recipients", len(args))
		return nil
	},
}

var recipientSearchCmd = &cobra.Command{
	Use:     "search [text]",
	Aliases: []string{"ls", "list"},
	Short:   "Search recipients, best match first",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		src := func(ctx context.Context, search string) ([]string, error) {
			return database.SearchRecipients(search)
		}
		names, err := suggest.Recipients(cmd.Context(), src, firstArg(args))
		if err != nil {
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if names == nil {
				names = []string{}
			}
			return output.JSON(names)
		}
		if len(names) == 0 {
			fmt.Println("No recipients")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recipientCmd)
	recipientCmd.AddCommand(recipientAddCmd, recipientSearchCmd)
	recipientSearchCmd.Flags().Bool("json", false, "Output as JSON")
}
