package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopledger/internal/config"
	"shopledger/internal/logger"
)

var version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shopledger",
	Short: "shopledger - invoice and customer ledger engine for shop POS",
	Long: `shopledger runs the invoicing backend for a small shop: product stock,
customer credit ledgers, gap-free invoice numbering and reporting,
all backed by Postgres.

Use the serve subcommand to start the HTTP API, and migrate to apply
the database schema.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return logger.Setup(cfg.LogLevel, cfg.LogFormat)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
