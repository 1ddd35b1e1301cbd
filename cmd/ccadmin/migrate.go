package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caseconductor/ccstore/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDSN()
		if err != nil {
			return err
		}
		if err := migrate.Up(cmd.Context(), dsn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("migrations applied")
		return nil
	},
}
