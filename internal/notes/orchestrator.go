// Package notes drives note generation for a batch of accepted diff items
// and multiplexes the output onto a single frame stream.
package notes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/notewire/internal/ai"
	"github.com/notewire/internal/prompts"
	"github.com/notewire/internal/sanitize"
	"github.com/notewire/pkg/models"
)

// Phase is the per-item generation state. Items advance strictly
// PendingDeveloper -> PendingMarketing -> Complete; any failure parks the
// item at Failed and ends the whole stream.
type Phase int

const (
	PhasePendingDeveloper Phase = iota
	PhasePendingMarketing
	PhaseComplete
	PhaseFailed
)

// String implements fmt.Stringer for log output.
func (p Phase) String() string {
	switch p {
	case PhasePendingDeveloper:
		return "pending_developer"
	case PhasePendingMarketing:
		return "pending_marketing"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// FrameWriter receives encoded frames. *stream.Encoder satisfies it; a
// write failure is fatal for the run.
type FrameWriter interface {
	Encode(frame models.StreamFrame) error
}

// Enricher resolves the optional tools payload for an item. Implementations
// must swallow their own failures and return an empty payload instead.
type Enricher interface {
	ToolsInfoFor(ctx context.Context, item models.DiffItem) models.ToolsInfo
}

// Orchestrator generates the two notes per item, strictly sequentially: the
// developer channel of an item fully closes before its marketing channel
// opens, and item N+1 does not start before item N completes. Each channel
// costs one unit of generation capacity, which is why nothing here fans out.
type Orchestrator struct {
	generator ai.Generator
	builder   *prompts.Builder
	redactor  *sanitize.Redactor
	enricher  Enricher

	phases map[string]Phase
}

// NewOrchestrator builds an orchestrator. redactor and enricher may be nil.
func NewOrchestrator(generator ai.Generator, enricher Enricher, redactor *sanitize.Redactor) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		builder:   prompts.NewBuilder(),
		redactor:  redactor,
		enricher:  enricher,
		phases:    make(map[string]Phase),
	}
}

// Phase reports the recorded state for an item ID.
func (o *Orchestrator) Phase(prID string) Phase {
	return o.phases[prID]
}

// Run streams notes for every item to sink. On the first failure it emits
// one terminal error frame naming the item and returns the failure; no
// further items are attempted. Closing the underlying transport is the
// caller's responsibility.
func (o *Orchestrator) Run(ctx context.Context, items []models.DiffItem, sink FrameWriter) error {
	for _, item := range items {
		if err := o.runItem(ctx, item, sink); err != nil {
			o.phases[item.ID] = PhaseFailed

			message := fmt.Sprintf("note generation failed for %s: %v", item.ID, err)
			if encodeErr := sink.Encode(models.ErrorFrame(message)); encodeErr != nil {
				log.Error().Err(encodeErr).Str("pr_id", item.ID).Msg("could not deliver terminal error frame")
			}
			return fmt.Errorf("item %s: %w", item.ID, err)
		}
		o.phases[item.ID] = PhaseComplete
	}
	return nil
}

func (o *Orchestrator) runItem(ctx context.Context, item models.DiffItem, sink FrameWriter) error {
	o.phases[item.ID] = PhasePendingDeveloper
	log.Info().Str("pr_id", item.ID).Msg("starting note generation")

	sanitized := item
	if o.redactor != nil {
		sanitized.Diff = o.redactor.Redact(item.Diff)
	}

	if err := o.runChannel(ctx, sanitized, models.ChannelDeveloper, sink); err != nil {
		return err
	}

	// Enrichment sits between the two channels: the developer note is
	// already final, and a slow lookup does not delay first output.
	if o.enricher != nil {
		tools := o.enricher.ToolsInfoFor(ctx, item)
		if len(tools.RelatedIssues) > 0 || len(tools.Contributors) > 0 {
			if err := sink.Encode(models.ToolsFrame(item.ID, tools)); err != nil {
				return fmt.Errorf("write tools frame: %w", err)
			}
		}
	}

	o.phases[item.ID] = PhasePendingMarketing
	return o.runChannel(ctx, sanitized, models.ChannelMarketing, sink)
}

// runChannel opens the channel with an empty content frame, relays each
// generation fragment as its own frame, and closes with a completion frame.
func (o *Orchestrator) runChannel(ctx context.Context, item models.DiffItem, channel models.Channel, sink FrameWriter) error {
	if err := sink.Encode(models.ContentFrame(item.ID, channel, "")); err != nil {
		return fmt.Errorf("open %s channel: %w", channel, err)
	}

	prompt := o.builder.Build(channel, item)
	err := o.generator.Generate(ctx, prompt, func(ctx context.Context, chunk string) error {
		return sink.Encode(models.ContentFrame(item.ID, channel, chunk))
	})
	if err != nil {
		return fmt.Errorf("%s generation: %w", channel, err)
	}

	if err := sink.Encode(models.DoneFrame(item.ID, channel)); err != nil {
		return fmt.Errorf("close %s channel: %w", channel, err)
	}

	log.Debug().Str("pr_id", item.ID).Str("channel", string(channel)).Msg("channel complete")
	return nil
}
