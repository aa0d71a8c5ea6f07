package cmd

import (
	"fmt"

	"github.com/marcus/notif/internal/config"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/output"
	"github.com/spf13/cobra"
)

// resolveBundle finds the named bundle, falling back to the configured default
func resolveBundle(database *db.DB, name string) (*models.Facet, error) {
	if name == "" {
		name = config.GetBundle(getBaseDir())
	}
	return database.GetBundle(name)
}

var bundleCmd = &cobra.Command{
	Use:     "bundle",
	Aliases: []string{"bundles"},
	Short:   "List bundles and pick the default one",
	GroupID: "core",
}

var bundleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bundles and their applications",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		bundles, err := database.ListBundles()
		if err != nil {
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if bundles == nil {
				bundles = []models.Facet{}
			}
			return output.JSON(bundles)
		}
		if len(bundles) == 0 {
			fmt.Println("No bundles")
			return nil
		}

		current := config.GetBundle(getBaseDir())
		for _, b := range bundles {
			marker := "  "
			if b.Name == current || b.ID == current {
				marker = "* "
			}
			fmt.Printf("%s%s  %s\n", marker, b.Name, b.DisplayName)
			apps, err := database.ListApplications(b.ID)
			if err != nil {
				return err
			}
			for _, a := range apps {
				fmt.Printf("    %s  %s\n", a.Name, a.DisplayName)
			}
		}
		return nil
	},
}

var bundleUseCmd = &cobra.Command{
	Use:   "use <bundle>",
	Short: "Set the bundle used when a command does not name one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer database.Close()

		bundle, err := database.GetBundle(args[0])
		if err != nil {
			return err
		}
		if err := config.SetBundle(getBaseDir(), bundle.Name); err != nil {
			return err
		}
		output.Success("DEFAULT BUNDLE %s", bundle.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleCmd)
	bundleCmd.AddCommand(bundleListCmd, bundleUseCmd)
	bundleListCmd.Flags().Bool("json", false, "Output as JSON")
}
