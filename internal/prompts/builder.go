// Package prompts assembles the role-tagged prompts fed to the generation
// capability, one per note channel.
package prompts

import (
	"fmt"
	"strings"

	"github.com/notewire/pkg/models"
)

// NoUserFacingChanges is the marketing note the model is told to fall back
// to when a change has no user-visible effect.
const NoUserFacingChanges = "No user-facing changes in this update."

const developerInstructions = `You are writing the developer-facing release note for one merged change.
Rules:
- Ignore comment-only edits, whitespace changes, and other trivia.
- Name the concrete mechanism that changed and why it changed.
- Keep it to one sentence, at most 2-3 lines.
- No greetings, no preamble, note text only.`

const marketingInstructions = `You are writing the end-user release note for one merged change.
Rules:
- Describe only the user-visible benefit.
- Never mention internal components, refactors, or technical detail.
- Keep it to one sentence.
- If nothing user-visible changed, reply exactly: "` + NoUserFacingChanges + `"
- No greetings, no preamble, note text only.`

// Builder renders channel prompts for diff items.
type Builder struct{}

// NewBuilder returns a prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the prompt for one channel of one item. The diff is assumed
// to be sanitized already.
func (b *Builder) Build(channel models.Channel, item models.DiffItem) string {
	var prompt strings.Builder

	switch channel {
	case models.ChannelMarketing:
		prompt.WriteString(marketingInstructions)
	default:
		prompt.WriteString(developerInstructions)
	}

	prompt.WriteString("\n\nChange description:\n")
	prompt.WriteString(item.Description)
	prompt.WriteString("\n\nUnified diff:\n```diff\n")
	prompt.WriteString(item.Diff)
	prompt.WriteString("\n```\n")

	if item.URL != "" {
		fmt.Fprintf(&prompt, "\nReference: %s\n", item.URL)
	}

	return prompt.String()
}
