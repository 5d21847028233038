// Package export provides the command that writes the field log to a file
package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/birdwatcher/cmd/session"
	"github.com/tphakala/birdwatcher/internal/app"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/errors"
	exporter "github.com/tphakala/birdwatcher/internal/export"
	"github.com/tphakala/birdwatcher/internal/observation"
)

// Command creates and returns the export command
func Command(settings *conf.Settings) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all observations as CSV, JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			return session.Run(cmd, settings, func(a *app.App) error {
				return runExport(cmd, a, f, output)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatCSV), "Export format: csv, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, a *app.App, format exporter.Format, output string) (err error) {
	// Oldest first reads naturally in a spreadsheet
	view := a.Observations.GetView(observation.SortByRecency)
	for i, j := 0, len(view)-1; i < j; i, j = i+1, j-1 {
		view[i], view[j] = view[j], view[i]
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		file, createErr := os.Create(output) //nolint:gosec // path is chosen by the user
		if createErr != nil {
			return errors.New(createErr).
				Component("export").
				Category(errors.CategoryFileIO).
				Context("path", output).
				Build()
		}
		defer func() {
			if closeErr := file.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("failed to close %s: %w", output, closeErr)
			}
		}()
		w = file
	}

	if err := exporter.Write(w, format, view, time.Now()); err != nil {
		return err
	}

	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d observations to %s\n", len(view), output)
	}
	return nil
}
