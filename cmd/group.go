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

var groupCmd = &cobra.Command{
	Use:     "group",
	Aliases: []string{"groups"},
	Short:   "Manage named behavior groups",
	GroupID: "core",
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the behavior groups of a bundle",
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
		groups, err := database.ListBehaviorGroups(bundle.ID)
		if err != nil {
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if groups == nil {
				groups = []models.BehaviorGroup{}
			}
			return output.JSON(groups)
		}
		if len(groups) == 0 {
			fmt.Println("No behavior groups")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("%s  %s  (%d actions)\n", g.ID, g.DisplayName, len(g.Actions))
			for _, line := range output.IndentLines(output.FormatActions(g.Actions), 4) {
				fmt.Println(line)
			}
		}
		return nil
	},
}

var groupCreateOpts editOptions

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a behavior group from --email and --integration actions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		bundleName, _ := cmd.Flags().GetString("bundle")
		g, err := createGroup(database, bundleName, args[0], groupCreateOpts, os.Stdin)
		if err != nil {
			return err
		}
		output.Success("CREATED %s %s", output.ShortID(g.ID), g.DisplayName)
		return nil
	},
}

// createGroup builds the action list of a new group with the same edits a
// bundle default accepts
func createGroup(database *db.DB, bundleName, name string, o editOptions, stdin io.Reader) (*models.BehaviorGroup, error) {
	bundle, err := resolveBundle(database, bundleName)
	if err != nil {
		return nil, err
	}

	state := selection.NewForDefault(models.DefaultBehavior{BundleID: bundle.ID})
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
	return database.CreateBehaviorGroup(bundle.ID, name, state.Submit().Actions)
}

var groupDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a behavior group",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.DeleteBehaviorGroup(args[0]); err != nil {
			return err
		}
		output.Success("DELETED %s", output.ShortID(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupListCmd, groupCreateCmd, groupDeleteCmd)

	groupListCmd.Flags().StringP("bundle", "b", "", "Bundle name or id (default from config)")
	groupListCmd.Flags().Bool("json", false, "Output as JSON")

	groupCreateCmd.Flags().StringP("bundle", "b", "", "Bundle name or id (default from config)")
	groupCreateOpts.bind(groupCreateCmd.Flags(), false)
}
