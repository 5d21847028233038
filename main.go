package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/birdwatcher/cmd"
	"github.com/tphakala/birdwatcher/internal/conf"
)

// Set at build time with -ldflags
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := &conf.Settings{Version: version, BuildDate: buildDate}
	rootCmd := cmd.RootCommand(settings)
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildDate)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
