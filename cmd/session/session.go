// Package session opens the field log for a single command invocation
package session

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/birdwatcher/internal/app"
	"github.com/tphakala/birdwatcher/internal/conf"
)

// Run opens the field log, calls fn and closes the log again. Location
// prompts use the command's stdin and stderr so stdout stays clean for
// exports.
func Run(cmd *cobra.Command, settings *conf.Settings, fn func(a *app.App) error) (err error) {
	a, err := app.New(cmd.Context(), settings, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(a)
}
