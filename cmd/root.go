// Package cmd assembles the birdwatcher command line interface
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/birdwatcher/cmd/add"
	"github.com/tphakala/birdwatcher/cmd/export"
	"github.com/tphakala/birdwatcher/cmd/list"
	"github.com/tphakala/birdwatcher/cmd/remove"
	"github.com/tphakala/birdwatcher/cmd/stats"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/logger"
)

// RootCommand creates and returns the root command. settings is filled
// from the config file, environment and flags before any subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "birdwatcher",
		Short:         "Wildlife field log",
		Long:          "birdwatcher records wildlife sightings with species, rarity, notes, time and location.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default searches ~/.config/birdwatcher and /etc/birdwatcher)")
	if err := setupFlags(rootCmd); err != nil {
		// Flag names are static, a failure here is a programming error
		panic(err)
	}

	rootCmd.AddCommand(
		add.Command(settings),
		list.Command(settings),
		remove.Command(settings),
		export.Command(settings),
		stats.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		}

		loaded, err := conf.Load()
		if err != nil {
			return err
		}
		version, buildDate := settings.Version, settings.BuildDate
		*settings = *loaded
		settings.Version, settings.BuildDate = version, buildDate

		// One trace id per invocation ties together the log lines of a command
		cmd.SetContext(logger.WithTraceID(cmd.Context(), uuid.NewString()))
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("db", "", "Path to the SQLite database file")

	if err := viper.BindPFlag("debug", flags.Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := viper.BindPFlag("output.sqlite.path", flags.Lookup("db")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
