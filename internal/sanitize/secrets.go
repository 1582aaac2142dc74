// Package sanitize scrubs diff text before it leaves the process as part of
// an LLM prompt.
package sanitize

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zricethezav/gitleaks/v8/detect"
)

const redactedPlaceholder = "[REDACTED]"

// Redactor masks detected secrets in text using the gitleaks default rule
// set. A nil Redactor passes text through untouched.
type Redactor struct {
	detector *detect.Detector
}

// NewRedactor builds a redactor with the default gitleaks configuration.
func NewRedactor() (*Redactor, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, err
	}
	return &Redactor{detector: detector}, nil
}

// Redact replaces every detected secret occurrence in text with a
// placeholder. Detection failure is never fatal: the caller still gets the
// original text, since a missed redaction must not block note generation.
func (r *Redactor) Redact(text string) string {
	if r == nil || r.detector == nil || text == "" {
		return text
	}

	findings := r.detector.DetectString(text)
	if len(findings) == 0 {
		return text
	}

	redacted := text
	for _, finding := range findings {
		if finding.Secret == "" {
			continue
		}
		redacted = strings.ReplaceAll(redacted, finding.Secret, redactedPlaceholder)
	}

	log.Warn().Int("findings", len(findings)).Msg("redacted secrets from diff before prompt assembly")
	return redacted
}
