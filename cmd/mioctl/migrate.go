package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/config"
	"github.com/mindhouselabs/miod/internal/store"
)

var (
	dbDriver string
	dbDSN    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Create or update the miod database schema.

Examples:
  # Local sqlite database
  mioctl migrate --dsn miod.db

  # Hosted postgres
  mioctl migrate --driver postgres --dsn "host=db.example.com user=miod dbname=miod"`,
	RunE: runMigrate,
}

var verifySchemaCmd = &cobra.Command{
	Use:   "verify-schema",
	Short: "Verify the database schema is complete",
	Long: `Check that every table and column miod needs exists in the database.

Examples:
  mioctl verify-schema --dsn miod.db`,
	RunE: runVerifySchema,
}

func init() {
	for _, cmd := range []*cobra.Command{migrateCmd, verifySchemaCmd} {
		cmd.Flags().StringVar(&dbDriver, "driver", "sqlite", "database driver (sqlite or postgres)")
		cmd.Flags().StringVar(&dbDSN, "dsn", "miod.db", "database connection string")
	}
}

func openStore() (*store.Store, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return store.Open(config.DatabaseConfig{Driver: dbDriver, DSN: dbDSN}, logger)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Schema migrated.")
	return nil
}

func runVerifySchema(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	missing, err := st.VerifySchema(cmd.Context())
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		for _, m := range missing {
			fmt.Printf("missing: %s\n", m)
		}
		return fmt.Errorf("schema incomplete: %d missing objects", len(missing))
	}
	fmt.Println("Schema complete.")
	return nil
}
