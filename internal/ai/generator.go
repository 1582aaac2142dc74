// Package ai wraps the external text-generation capability behind a small
// streaming contract and a provider factory.
package ai

import (
	"context"
	"errors"
)

// EmitFunc receives one text fragment. Returning an error aborts the
// generation; the generator must not call emit again afterwards.
type EmitFunc func(ctx context.Context, chunk string) error

// Generator produces a lazy sequence of text fragments for a prompt. The
// sequence terminates by Generate returning: nil after natural exhaustion,
// or the failure that cut it short.
type Generator interface {
	// Generate streams fragments for prompt through emit, in order.
	Generate(ctx context.Context, prompt string, emit EmitFunc) error

	// Name returns the provider's name.
	Name() string
}

// ErrProviderNotFound is returned by the factory for unknown provider names.
var ErrProviderNotFound = errors.New("ai provider not found")
