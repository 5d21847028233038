// Package list provides the command that prints the field log
package list

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/birdwatcher/cmd/session"
	"github.com/tphakala/birdwatcher/internal/app"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/observation"
	"github.com/tphakala/birdwatcher/internal/suncalc"
)

// maxNotesWidth truncates notes in the table view
const maxNotesWidth = 40

// Command creates and returns the list command
func Command(settings *conf.Settings) *cobra.Command {
	var sortBy string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List observations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := observation.ParseSortKey(sortBy)
			if err != nil {
				return err
			}

			return session.Run(cmd, settings, func(a *app.App) error {
				view := a.Observations.GetView(key)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				return writeTable(cmd.OutOrStdout(), view, a.SunCalc)
			})
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", string(observation.SortByRecency), "Sort order: recency, species or rarity")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print observations as JSON")

	return cmd
}

func writeJSON(w io.Writer, view []datastore.Observation) error {
	if view == nil {
		view = []datastore.Observation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func writeTable(w io.Writer, view []datastore.Observation, sun *suncalc.SunCalc) error {
	if len(view) == 0 {
		_, err := fmt.Fprintln(w, "No observations yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSPECIES\tRARITY\tTIME\tLOCATION\tLIGHT\tNOTES")

	for i := range view {
		obs := &view[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			obs.ID,
			obs.Species,
			orDash(string(obs.Rarity)),
			obs.Timestamp,
			formatLocation(obs),
			dayPart(sun, obs),
			truncate(obs.Notes, maxNotesWidth))
	}

	return tw.Flush()
}

func formatLocation(obs *datastore.Observation) string {
	if !obs.HasLocation() {
		return "-"
	}
	return strconv.FormatFloat(*obs.Latitude, 'f', 4, 64) + ", " + strconv.FormatFloat(*obs.Longitude, 'f', 4, 64)
}

// dayPart labels the light conditions of a located observation
func dayPart(sun *suncalc.SunCalc, obs *datastore.Observation) string {
	if sun == nil || !obs.HasLocation() || obs.ObservedAt == 0 {
		return "-"
	}
	part, err := sun.DayPart(*obs.Latitude, *obs.Longitude, time.Unix(obs.ObservedAt, 0))
	if err != nil {
		// Polar day or night
		return "-"
	}
	return string(part)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
