// Package add provides the command that records a new observation
package add

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/birdwatcher/cmd/session"
	"github.com/tphakala/birdwatcher/internal/app"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/observation"
)

// Command creates and returns the add command
func Command(settings *conf.Settings) *cobra.Command {
	var species, rarity, notes string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new observation",
		Long: `Add saves an observation with the current time and, when location access
is permitted, the current position. A missing position never prevents saving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := observation.ParseRarity(rarity)
			if err != nil {
				return err
			}

			return session.Run(cmd, settings, func(a *app.App) error {
				return runAdd(cmd, a, species, notes, parsed)
			})
		},
	}

	cmd.Flags().StringVarP(&species, "species", "s", "", "Species observed")
	cmd.Flags().StringVarP(&rarity, "rarity", "r", "", "Rarity: common, rare or extremely-rare")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("species")

	return cmd
}

func runAdd(cmd *cobra.Command, a *app.App, species, notes string, rarity observation.Rarity) error {
	receipt, err := a.Observations.AddObservation(cmd.Context(), species, notes, rarity)
	if err != nil && receipt.Observation.ID == 0 {
		return fmt.Errorf("failed to save observation: %w", err)
	}

	out := cmd.OutOrStdout()
	obs := receipt.Observation

	switch {
	case receipt.PermissionDenied():
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: No permission to access location")
	case receipt.Location != nil:
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: Location unavailable, saved without coordinates")
	}

	fmt.Fprintf(out, "Saved observation #%d: %s at %s", obs.ID, obs.Species, obs.Timestamp)
	if obs.HasLocation() {
		fmt.Fprintf(out, " (%.5f, %.5f)", *obs.Latitude, *obs.Longitude)
	}
	fmt.Fprintln(out)

	// Saved, but the list could not be reloaded
	if err != nil {
		return fmt.Errorf("observation saved but list refresh failed: %w", err)
	}
	return nil
}
