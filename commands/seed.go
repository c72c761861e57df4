package commands

import (
	"github.com/spf13/cobra"
)

var seedMigrate bool

// seedCmd loads the demo catalog and the admin account
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo categories, products and the admin account",
	Long: `Load the demo catalog and, when ADMIN_USERNAME is set, a staff account.
Running it again leaves existing rows alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if seedMigrate {
			if err := a.migrate(ctx); err != nil {
				return err
			}
		}
		if err := a.seed(ctx); err != nil {
			return err
		}
		a.log.Info().Msg("seed complete")
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", true, "Migrate the schema before seeding")
	rootCmd.AddCommand(seedCmd)
}
