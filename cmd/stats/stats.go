// Package stats provides the command that summarizes the field log
package stats

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"github.com/tphakala/birdwatcher/cmd/session"
	"github.com/tphakala/birdwatcher/internal/app"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/observation"
)

// Summary counts observations by rarity and species
type Summary struct {
	Total     int
	Located   int
	ByRarity  map[datastore.Rarity]int
	BySpecies map[string]int
}

// Command creates and returns the stats command
func Command(settings *conf.Settings) *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show observation counts and store metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return session.Run(cmd, settings, func(a *app.App) error {
				out := cmd.OutOrStdout()
				writeSummary(out, summarize(a.Observations.GetView(observation.SortByRecency)))

				if !showMetrics {
					return nil
				}
				fmt.Fprintln(out, "\nMetrics:")
				return a.Metrics.WriteText(out)
			})
		},
	}

	cmd.Flags().BoolVar(&showMetrics, "metrics", true, "Include store and service metrics for this run")

	return cmd
}

func summarize(view []datastore.Observation) Summary {
	s := Summary{
		Total:     len(view),
		ByRarity:  make(map[datastore.Rarity]int),
		BySpecies: make(map[string]int),
	}
	for i := range view {
		s.ByRarity[view[i].Rarity]++
		s.BySpecies[view[i].Species]++
		if view[i].HasLocation() {
			s.Located++
		}
	}
	return s
}

func writeSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Observations: %d (%d with location)\n", s.Total, s.Located)
	if s.Total == 0 {
		return
	}

	fmt.Fprintln(w, "\nBy rarity:")
	for _, r := range append(slices.Clone(observation.Rarities), datastore.RarityUnset) {
		count, ok := s.ByRarity[r]
		if !ok {
			continue
		}
		label := string(r)
		if r == datastore.RarityUnset {
			label = "Unset"
		}
		fmt.Fprintf(w, "  %-16s %d\n", label, count)
	}

	fmt.Fprintln(w, "\nBy species:")
	names := slices.Collect(maps.Keys(s.BySpecies))
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(s.BySpecies[b], s.BySpecies[a]), cmp.Compare(a, b))
	})
	for _, name := range names {
		fmt.Fprintf(w, "  %-24s %d\n", name, s.BySpecies[name])
	}
}
