// Package stream implements the wire codec for the multiplexed note stream:
// server-sent-event records of the form "data: <json>\n\n", one StreamFrame
// per record.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"

	"github.com/notewire/pkg/models"
)

const (
	dataPrefix      = "data:"
	recordSeparator = "\n\n"
)

// Encoder serializes frames onto a byte stream. It is single-writer by
// contract; the transport's own backpressure throttles the producer.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing SSE records to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one frame as a self-delimited record.
func (e *Encoder) Encode(frame models.StreamFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "%s %s%s", dataPrefix, payload, recordSeparator); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Heartbeat writes an empty record. Decoders ignore it; it only keeps the
// transport warm.
func (e *Encoder) Heartbeat() error {
	if _, err := io.WriteString(e.w, recordSeparator); err != nil {
		return fmt.Errorf("write heartbeat: %w", err)
	}
	return nil
}

// Result is the outcome of decoding one complete record. A record that
// fails to parse carries Err and no frame; the stream itself continues.
type Result struct {
	Frame models.StreamFrame
	Err   error
}

// Decoder reassembles frames from arbitrarily chunked bytes. Chunks may
// split records, JSON payloads, and even multi-byte UTF-8 sequences; the
// decoder buffers raw bytes and only interprets text once a full record is
// present, so partial sequences are never decoded in isolation.
type Decoder struct {
	buf     bytes.Buffer
	skipped int
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns one Result per complete record found, in
// arrival order. An incomplete trailing record stays buffered for the next
// call. Empty records (heartbeats) produce no Result at all.
func (d *Decoder) Feed(chunk []byte) []Result {
	d.buf.Write(chunk)

	var results []Result
	for {
		raw := d.buf.Bytes()
		idx := bytes.Index(raw, []byte(recordSeparator))
		if idx < 0 {
			return results
		}

		record := string(raw[:idx])
		d.buf.Next(idx + len(recordSeparator))

		if strings.TrimSpace(record) == "" {
			continue
		}

		frame, err := parseRecord(record)
		if err != nil {
			d.skipped++
			log.Warn().Err(err).Int("skipped_total", d.skipped).Msg("skipping malformed stream record")
			results = append(results, Result{Err: err})
			continue
		}
		results = append(results, Result{Frame: frame})
	}
}

// Skipped reports how many malformed records this decoder has dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Buffered reports how many bytes await a record separator.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}

func parseRecord(record string) (models.StreamFrame, error) {
	payload := strings.TrimSpace(record)
	if strings.HasPrefix(payload, dataPrefix) {
		payload = strings.TrimSpace(strings.TrimPrefix(payload, dataPrefix))
	}

	var frame models.StreamFrame
	if err := json.Unmarshal([]byte(payload), &frame); err == nil {
		return frame, nil
	}

	// One repair attempt before giving up on the record. Generation output
	// sometimes leaks into a frame payload truncated mid-escape.
	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		return models.StreamFrame{}, fmt.Errorf("parse record: unrepairable payload %q", truncate(payload, 80))
	}
	if err := json.Unmarshal([]byte(repaired), &frame); err != nil {
		return models.StreamFrame{}, fmt.Errorf("parse record: %w", err)
	}
	log.Debug().Str("payload", truncate(payload, 80)).Msg("recovered malformed stream record via JSON repair")
	return frame, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
