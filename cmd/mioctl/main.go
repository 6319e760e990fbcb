// Package main implements the mioctl CLI for manual operations against
// a running miod server and for local maintenance of miod data files.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the miod HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mioctl",
	Short: "CLI for miod server operations",
	Long: `mioctl is a command-line interface for the miod backend.
It ingests protocol libraries, searches the knowledge index, maintains
glossaries and manages the database schema.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "miod server URL")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(glossaryCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(verifySchemaCmd)
}
