package commands

import (
	"errors"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the database tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.cfg.Store == config.StoreMemory {
			return errors.New("migrate needs STORE=postgres")
		}
		return a.migrate(ctx)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
