package main

import (
	"fmt"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the local store schema to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Seen.Backend != config.SeenBackendDatabase {
				return fmt.Errorf("seen backend is %q; migrate needs %q", a.cfg.Seen.Backend, config.SeenBackendDatabase)
			}

			// start applies pending migrations before returning.
			if err := a.start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "local store schema applied (%s)\n", a.cfg.Database.Driver)
			return nil
		},
	}
}
