package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/notewire/internal/filter"
	"github.com/notewire/internal/notes"
	"github.com/notewire/internal/reduce"
	"github.com/notewire/internal/stream"
	"github.com/notewire/pkg/models"
)

// GenerateCommand returns the generate command
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate release notes for a batch of diff items",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file with diff items ('-' for stdin)",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "Filter preset: conservative or permissive (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Emit wire frames instead of reconstructed notes",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	items, err := readItems(c.String("input"))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no diff items in input")
	}

	preset := c.String("policy")
	if preset == "" {
		preset = cfg.Filter.Preset
	}
	accepted := filter.FilterAll(items, filter.PolicyByName(preset))
	if len(accepted) == 0 {
		return fmt.Errorf("no relevant items after filtering (%d supplied)", len(items))
	}
	log.Info().Int("supplied", len(items)).Int("accepted", len(accepted)).Msg("filtered batch")

	generator, err := buildGenerator(c.Context, cfg)
	if err != nil {
		return err
	}
	orchestrator := notes.NewOrchestrator(generator, buildEnricher(cfg), buildRedactor(cfg))

	if c.Bool("raw") {
		return orchestrator.Run(c.Context, accepted, stream.NewEncoder(os.Stdout))
	}

	// Round-trip through the wire codec so the printed notes are exactly
	// what a remote consumer would reconstruct.
	sink := &decodeWriter{decoder: stream.NewDecoder(), state: reduce.NewState()}
	runErr := orchestrator.Run(c.Context, accepted, stream.NewEncoder(sink))

	printNotes(accepted, sink.state)

	if runErr != nil {
		return runErr
	}
	return sink.err
}

func readItems(path string) ([]models.DiffItem, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = f
	}

	var items []models.DiffItem
	if err := json.NewDecoder(reader).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode diff items: %w", err)
	}
	return items, nil
}

func printNotes(items []models.DiffItem, state reduce.State) {
	for _, item := range items {
		note, ok := state[item.ID]
		if !ok {
			continue
		}
		fmt.Printf("## %s\n\n", item.ID)
		fmt.Printf("Developer: %s\n\n", note.Developer)
		fmt.Printf("Marketing: %s\n\n", note.Marketing)
		if note.Tools != nil {
			for _, issue := range note.Tools.RelatedIssues {
				fmt.Printf("Related: %s\n", issue)
			}
			for _, contributor := range note.Tools.Contributors {
				fmt.Printf("Contributor: %s (%d)\n", contributor.Name, contributor.Contributions)
			}
			fmt.Println()
		}
	}
}

// decodeWriter pipes encoded bytes straight back through the decoder and
// reducer, accumulating reconstruction state.
type decodeWriter struct {
	decoder *stream.Decoder
	state   reduce.State
	err     error
}

func (w *decodeWriter) Write(p []byte) (int, error) {
	for _, result := range w.decoder.Feed(p) {
		if result.Err != nil {
			continue
		}
		state, err := reduce.Apply(w.state, result.Frame)
		w.state = state
		if err != nil && w.err == nil {
			w.err = err
		}
	}
	return len(p), nil
}
