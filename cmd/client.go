package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/notewire/internal/reduce"
	"github.com/notewire/internal/stream"
)

// ClientCommand returns the client command
func ClientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Send a batch to a remote Notewire server and reconstruct the notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Base URL of the Notewire server",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file with diff items ('-' for stdin)",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "Filter preset: conservative or permissive",
			},
		},
		Action: runClient,
	}
}

func runClient(c *cli.Context) error {
	items, err := readItems(c.String("input"))
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]interface{}{
		"items":  items,
		"policy": c.String("policy"),
	})
	if err != nil {
		return err
	}

	url := c.String("url") + "/api/v1/notes/stream"
	req, err := http.NewRequestWithContext(c.Context, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// No overall timeout: the stream lives as long as generation does.
	client := &http.Client{Timeout: 0}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server rejected batch: %d %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	state, streamErr := consume(resp.Body)
	printNotes(items, state)

	if streamErr != nil {
		return streamErr
	}
	return nil
}

// consume reads the event stream in small chunks, exactly as fragments
// arrive, and folds every decoded frame into the reconstruction state.
// State accumulated before a terminal error frame is kept.
func consume(body io.Reader) (reduce.State, error) {
	decoder := stream.NewDecoder()
	state := reduce.NewState()
	var terminal error

	buf := make([]byte, 4096)
	deadline := time.Now().Add(30 * time.Minute)
	for time.Now().Before(deadline) {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, result := range decoder.Feed(buf[:n]) {
				if result.Err != nil {
					continue
				}
				next, err := reduce.Apply(state, result.Frame)
				state = next
				if err != nil && terminal == nil {
					terminal = err
				}
			}
		}
		if readErr == io.EOF {
			return state, terminal
		}
		if readErr != nil {
			return state, readErr
		}
	}
	return state, fmt.Errorf("stream exceeded maximum duration")
}
