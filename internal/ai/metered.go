package ai

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/notewire/internal/retry"
)

// MeteredGenerator throttles and hardens an underlying generator. Every
// Generate call consumes one unit of generation capacity; the limiter makes
// that metering explicit instead of leaving it to provider-side 429s.
type MeteredGenerator struct {
	inner   Generator
	limiter *rate.Limiter
	retry   retry.Config
}

// NewMeteredGenerator wraps inner with a rate limiter admitting rps calls
// per second (burst of one, so calls are evenly spaced).
func NewMeteredGenerator(inner Generator, rps float64) *MeteredGenerator {
	if rps <= 0 {
		rps = 1
	}
	return &MeteredGenerator{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retry.DefaultConfig(),
	}
}

// Name returns the wrapped generator's name.
func (m *MeteredGenerator) Name() string {
	return m.inner.Name()
}

// Generate waits for limiter admission, then streams from the wrapped
// generator. A transient failure is retried only while zero fragments have
// been emitted; once any text has reached emit, a replay would duplicate
// streamed output, so the failure is returned as-is.
func (m *MeteredGenerator) Generate(ctx context.Context, prompt string, emit EmitFunc) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	emitted := false
	trackedEmit := func(ctx context.Context, chunk string) error {
		emitted = true
		return emit(ctx, chunk)
	}

	var err error
	for attempt := 0; attempt <= m.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if waitErr := m.limiter.Wait(ctx); waitErr != nil {
				return waitErr
			}
		}

		err = m.inner.Generate(ctx, prompt, trackedEmit)
		if err == nil || emitted || !retry.IsRetryable(err) {
			return err
		}

		log.Debug().Err(err).Int("attempt", attempt+1).Msg("generation failed before first fragment, retrying")
	}
	return err
}
