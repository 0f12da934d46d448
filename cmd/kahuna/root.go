package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/gateway"
	"github.com/JaimeStill/kahuna/internal/infrastructure"
	"github.com/JaimeStill/kahuna/internal/seen"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand. It is populated in the
// root PersistentPreRunE so flags and .env are applied first.
type app struct {
	output string

	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	gateway gateway.System
	started bool
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "kahuna",
		Short: "Search, crop and upload images through the media services",
		Long: `Kahuna is a terminal client for the media services.

It searches the Media API with continuation paging, shows images and their
crops, submits crops to the Cropper, tracks per-query seen marks and uploads
files through the Loader. Configuration comes from config.toml, an optional
config.{SERVICE_ENV}.toml overlay and the environment (.env is loaded).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", formatText, "output format: text, json or yaml")

	cmd.AddCommand(
		newSearchCmd(a),
		newImageCmd(a),
		newCropCmd(a),
		newSeenCmd(a),
		newUploadCmd(a),
		newMigrateCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if err := validFormat(a.output); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("finalize config: %w", err)
	}

	infra, err := infrastructure.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.infra = infra
	a.gateway = gateway.New(&cfg.Gateway, cfg.Pagination, infra.Logger)
	return nil
}

// start brings up the local store. Only commands that read or write seen
// marks need it.
func (a *app) start() error {
	if a.started {
		return nil
	}
	if err := a.infra.Start(); err != nil {
		return err
	}
	a.started = true
	return nil
}

func (a *app) seen() (seen.System, error) {
	if err := a.start(); err != nil {
		return nil, err
	}
	return seen.New(a.infra.Store, a.cfg.Seen.Key, a.infra.Logger), nil
}

func (a *app) close() error {
	if !a.started {
		return nil
	}
	return a.infra.Lifecycle.Shutdown(10 * time.Second)
}
