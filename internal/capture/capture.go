// Package capture records request and stream payloads to disk for building
// debugging fixtures. It is inert unless the capture directory is set.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// envCaptureDir enables capture when set to a writable directory.
const envCaptureDir = "NOTEWIRE_CAPTURE_DIR"

var (
	sessionID  = time.Now().Format("20060102-150405")
	captureSeq uint64
)

// Enabled reports whether capture is active for this process.
func Enabled() bool {
	return os.Getenv(envCaptureDir) != ""
}

// WriteJSON marshals the payload to indented JSON and stores it under the
// capture directory, one session subdirectory per process. Failures are
// logged and otherwise ignored so capture can never break a request.
func WriteJSON(category string, payload interface{}) {
	if !Enabled() {
		return
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("capture: marshal failed")
		return
	}
	writeFile(category, "json", data)
}

func writeFile(category, ext string, data []byte) {
	sessionDir := filepath.Join(os.Getenv(envCaptureDir), sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", sessionDir).Msg("capture: mkdir failed")
		return
	}

	seq := atomic.AddUint64(&captureSeq, 1)
	path := filepath.Join(sessionDir, fmt.Sprintf("%s-%04d.%s", category, seq, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("capture: write failed")
		return
	}

	log.Debug().Str("path", path).Msg("capture: wrote payload")
}
