package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/krishkalaria12/foodies/config"
	"github.com/krishkalaria12/foodies/database"
	"github.com/spf13/cobra"
)

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "List stored meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL, cfg.DBLogLevel)
		if err != nil {
			return err
		}
		defer database.Close(db)

		meals, err := database.NewMealStore(db).List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tTITLE\tCREATOR\tIMAGE")
		for _, m := range meals {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Slug, m.Title, m.Creator, m.Image)
		}
		return w.Flush()
	},
}
