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

var defaultsCmd = &cobra.Command{
	Use:     "defaults",
	Aliases: []string{"default"},
	Short:   "Show and edit the bundle default actions",
	GroupID: "core",
}

var defaultsShowCmd = &cobra.Command{
	Use:   "show [bundle]",
	Short: "Show the default actions of a bundle",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		bundle, err := resolveBundle(database, firstArg(args))
		if err != nil {
			return err
		}
		d, err := database.GetDefaultBehavior(bundle.ID)
		if err != nil {
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(d)
		}

		fmt.Printf("%s default actions\n", bundle.DisplayName)
		for _, line := range output.IndentLines(output.FormatActions(d.Actions), 2) {
			fmt.Println(line)
		}
		return nil
	},
}

var defaultsEditOpts editOptions

var defaultsEditCmd = &cobra.Command{
	Use:   "edit [bundle]",
	Short: "Change the default actions of a bundle",
	Long: `Change the default actions of a bundle.

Defaults are either muted or custom; --mode default is not available here.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		d, err := editDefaults(database, firstArg(args), defaultsEditOpts, os.Stdin)
		if err != nil {
			return err
		}
		output.Success("SAVED defaults")
		for _, line := range output.IndentLines(output.FormatActions(d.Actions), 2) {
			fmt.Println(line)
		}
		return nil
	},
}

// editDefaults applies the edit flags to a bundle default and stores it
func editDefaults(database *db.DB, bundleName string, o editOptions, stdin io.Reader) (*models.DefaultBehavior, error) {
	bundle, err := resolveBundle(database, bundleName)
	if err != nil {
		return nil, err
	}
	d, err := database.GetDefaultBehavior(bundle.ID)
	if err != nil {
		return nil, err
	}

	state := selection.NewForDefault(*d)
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
	if err := database.SaveDefaultBehavior(bundle.ID, state.Submit().Actions); err != nil {
		return nil, err
	}
	return database.GetDefaultBehavior(bundle.ID)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
	defaultsCmd.AddCommand(defaultsShowCmd, defaultsEditCmd)

	defaultsShowCmd.Flags().Bool("json", false, "Output as JSON")
	defaultsEditOpts.bind(defaultsEditCmd.Flags(), true)
}
