// Package remove provides the command that deletes an observation
package remove

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tphakala/birdwatcher/cmd/session"
	"github.com/tphakala/birdwatcher/internal/app"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/observation"
)

// Command creates and returns the remove command
func Command(settings *conf.Settings) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete an observation",
		Long:    "Remove deletes one observation by id after confirmation. Removing an id that does not exist does nothing.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid observation id %q", args[0])
			}

			return session.Run(cmd, settings, func(a *app.App) error {
				return runRemove(cmd, a, uint(id), assumeYes)
			})
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}

func runRemove(cmd *cobra.Command, a *app.App, id uint, assumeYes bool) error {
	out := cmd.OutOrStdout()

	target, found := findObservation(a.Observations.GetView(observation.SortByRecency), id)
	if !found {
		fmt.Fprintf(out, "No observation #%d\n", id)
		return nil
	}

	if !assumeYes {
		prompt := fmt.Sprintf("Delete observation #%d %s (%s)? [y/N]: ", target.ID, target.Species, target.Timestamp)
		if !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt) {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if err := a.Observations.RemoveObservation(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete observation #%d: %w", id, err)
	}

	fmt.Fprintf(out, "Deleted observation #%d, %d remaining\n", id, a.Observations.Len())
	return nil
}

func findObservation(view []datastore.Observation, id uint) (datastore.Observation, bool) {
	for _, obs := range view {
		if obs.ID == id {
			return obs, true
		}
	}
	return datastore.Observation{}, false
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
