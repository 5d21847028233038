// Package main provides a CLI tool for copying a birdwatcher field log
// from SQLite to MySQL. Observation ids are preserved, so running the
// tool again only copies rows added since the last run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be set via ldflags during build)
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dbexport",
	Short: "Copy birdwatcher observations from SQLite to MySQL",
	Long: `A tool for moving a birdwatcher field log from the embedded SQLite
database to MySQL. Rows keep their ids; rows already present in the target
are skipped, so the copy can be repeated safely.`,
	RunE:         runExport,
	SilenceUsage: true,
}

var cfg Config

func init() {
	// Source database flags
	rootCmd.Flags().StringVar(&cfg.SQLitePath, "sqlite-path", "", "Path to source SQLite database file")

	// Target database flags - DSN or individual components
	rootCmd.Flags().StringVar(&cfg.MySQLDSN, "mysql-dsn", "", "MySQL connection string (e.g., user:pass@tcp(host:3306)/dbname)")
	rootCmd.Flags().StringVar(&cfg.MySQLHost, "mysql-host", "", "MySQL host (alternative to DSN)")
	rootCmd.Flags().IntVar(&cfg.MySQLPort, "mysql-port", 3306, "MySQL port")
	rootCmd.Flags().StringVar(&cfg.MySQLUser, "mysql-user", "birdwatcher", "MySQL username")
	rootCmd.Flags().StringVar(&cfg.MySQLPass, "mysql-pass", "", "MySQL password")
	rootCmd.Flags().StringVar(&cfg.MySQLDatabase, "mysql-database", "birdwatcher", "MySQL database name")

	// Copy options
	rootCmd.Flags().IntVar(&cfg.BatchSize, "batch-size", 1000, "Number of records per batch")
	rootCmd.Flags().BoolVar(&cfg.Clean, "clean", false, "Delete all target observations before copying")
	rootCmd.Flags().BoolVar(&cfg.SkipVerify, "skip-verify", false, "Skip post-copy verification")
	rootCmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")

	// Config file fallback
	rootCmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "Path to birdwatcher config.yaml (for connection fallback)")

	rootCmd.Version = version
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := cfg.Load(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		fmt.Fprintf(out, "Source: %s\n", cfg.SQLitePath)
		fmt.Fprintf(out, "Target: %s\n", cfg.GetSanitizedMySQLDSN())
		fmt.Fprintf(out, "Batch size: %d\n", cfg.BatchSize)
	}

	migrator, err := NewMigrator(cmd.Context(), &cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()
	migrator.out = out

	stats, err := migrator.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	stats.Print(out)

	if !cfg.SkipVerify {
		fmt.Fprintln(out, "\n--- Verification ---")
		verifier := NewVerifier(migrator.sourceDB, migrator.targetDB, out)
		if err := verifier.Verify(cmd.Context()); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		fmt.Fprintln(out, "Verification passed!")
	}

	return nil
}
