package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/qtota/offer-service/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  `Applies the offer service schema. Every statement is idempotent, so the command is safe to re-run.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger.Info().Msg("Applying schema")
	if err := database.Migrate(ctx, database.Pool()); err != nil {
		return err
	}
	logger.Info().Msg("Schema applied")
	return nil
}
