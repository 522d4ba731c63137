package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/logging"
)

// @title          Lesson Songs API
// @version        1.0
// @description    Turns lesson content into culturally localized songs with rendered audio.
// @BasePath       /
// @schemes        http https
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:           "songlesson",
		Short:         "Lesson Songs API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logging.Configure(loaded.Server.LogLevel, loaded.Server.Env)
			cfg = loaded
			return nil
		},
	}

	getConfig := func() *config.Config { return cfg }

	serve := newServeCommand(getConfig)
	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCommand(getConfig))

	// serve is the default
	cmd.RunE = serve.RunE

	return cmd
}
