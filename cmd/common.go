package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/notewire/internal/ai"
	"github.com/notewire/internal/config"
	"github.com/notewire/internal/enrich"
	"github.com/notewire/internal/sanitize"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration is invalid: %w", err)
	}
	return cfg, nil
}

func buildGenerator(ctx context.Context, cfg *config.Config) (ai.Generator, error) {
	connector, err := ai.NewConnector(ctx, ai.ConnectorOptions{
		Provider:    ai.Provider(cfg.AI.Provider),
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return ai.NewMeteredGenerator(connector, cfg.AI.RequestsPerSecond), nil
}

func buildEnricher(cfg *config.Config) *enrich.Service {
	github := enrich.NewGitHubLookup(cfg.Enrich.GitHubToken)

	var gitlab enrich.Lookup
	if cfg.Enrich.GitLabToken != "" {
		lookup, err := enrich.NewGitLabLookup(cfg.Enrich.GitLabURL, cfg.Enrich.GitLabToken)
		if err != nil {
			log.Warn().Err(err).Msg("gitlab enrichment disabled")
		} else {
			gitlab = lookup
		}
	}

	return enrich.NewService(github, gitlab)
}

func buildRedactor(cfg *config.Config) *sanitize.Redactor {
	if !cfg.Sanitize.RedactSecrets {
		return nil
	}
	redactor, err := sanitize.NewRedactor()
	if err != nil {
		log.Warn().Err(err).Msg("secret redaction disabled")
		return nil
	}
	return redactor
}
