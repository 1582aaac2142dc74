package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/notewire/internal/api"
	"github.com/notewire/internal/store"
)

// APICommand returns the api command
func APICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Start the Notewire API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			port := cfg.Server.Port
			if c.Int("port") > 0 {
				port = c.Int("port")
			}

			generator, err := buildGenerator(c.Context, cfg)
			if err != nil {
				return err
			}

			var archive *store.Archive
			if cfg.Database.URL != "" {
				ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
				defer cancel()
				archive, err = store.Open(ctx, cfg.Database.URL)
				if err != nil {
					log.Warn().Err(err).Msg("note archive disabled")
				} else {
					defer archive.Close()
				}
			}

			log.Info().Int("port", port).Str("provider", cfg.AI.Provider).Msg("starting API server")

			server := api.NewServer(api.Options{
				Port:          port,
				Generator:     generator,
				Enricher:      buildEnricher(cfg),
				Redactor:      buildRedactor(cfg),
				Archive:       archive,
				DefaultPreset: cfg.Filter.Preset,
			})
			return server.Start()
		},
	}
}
