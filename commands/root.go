package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...commands.Version=...".
var Version = "dev"

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API - catalog, accounts and orders over HTTP",
	Long: `Storefront API serves a product catalog, customer accounts and order
placement as a JSON API.

Configuration comes from the environment (and .env), optionally layered on a
config file passed with --config. Run "storefront migrate" once against a new
database, "storefront seed" for demo data, then "storefront serve".`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json, toml or env); environment values win")
}
