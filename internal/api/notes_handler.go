package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/notewire/internal/capture"
	"github.com/notewire/internal/diff"
	"github.com/notewire/internal/filter"
	"github.com/notewire/internal/notes"
	"github.com/notewire/internal/reduce"
	"github.com/notewire/internal/stream"
	"github.com/notewire/pkg/models"
)

// StreamRequest is the body of POST /api/v1/notes/stream.
type StreamRequest struct {
	Items  []models.DiffItem `json:"items"`
	Policy string            `json:"policy,omitempty"`
}

// FilterResponse is the body of POST /api/v1/diffs/filter.
type FilterResponse struct {
	Accepted []FilteredItem `json:"accepted"`
	Rejected int            `json:"rejected"`
}

// FilteredItem pairs an accepted item with its meaningful-change count and
// per-file statistics.
type FilteredItem struct {
	models.DiffItem
	MeaningfulChanges int             `json:"meaningfulChanges"`
	Files             []diff.FileStat `json:"files,omitempty"`
}

func (s *Server) resolvePolicy(name string) models.FilterPolicy {
	if name == "" {
		name = s.defaultPreset
	}
	return filter.PolicyByName(name)
}

// streamNotes validates the batch, filters it, and streams generated note
// frames as server-sent events. Request problems are HTTP 400; once the
// event stream has started, every further failure travels in-band as an
// error frame.
func (s *Server) streamNotes(c echo.Context) error {
	var req StreamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no diff items supplied")
	}

	policy := s.resolvePolicy(req.Policy)
	accepted := filter.FilterAll(req.Items, policy)
	if len(accepted) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no relevant items after filtering")
	}

	streamID := uuid.NewString()
	capture.WriteJSON("stream-request", req)
	logger := log.With().Str("stream_id", streamID).Logger()
	logger.Info().Int("requested", len(req.Items)).Int("accepted", len(accepted)).Msg("starting note stream")

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	// The response writer is the single transport writer; echo closes it
	// when the handler returns, whether the run finished or aborted.
	sink := newRecordingSink(stream.NewEncoder(resp), resp)

	orchestrator := notes.NewOrchestrator(s.generator, s.enricher, s.redactor)
	runErr := orchestrator.Run(c.Request().Context(), accepted, sink)
	if runErr != nil {
		// Already reported in-band; the HTTP status is long gone.
		logger.Error().Err(runErr).Msg("note stream aborted")
		return nil
	}

	if s.archive != nil {
		if err := s.archive.Save(c.Request().Context(), sink.state); err != nil {
			logger.Warn().Err(err).Msg("archiving completed notes failed")
		}
	}

	logger.Info().Int("items", len(accepted)).Msg("note stream complete")
	return nil
}

// filterDiffs exposes the relevance filter standalone: same decision the
// stream endpoint makes, without spending generation capacity.
func (s *Server) filterDiffs(c echo.Context) error {
	var req StreamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	policy := s.resolvePolicy(req.Policy)
	accepted := filter.FilterAll(req.Items, policy)

	result := FilterResponse{
		Accepted: make([]FilteredItem, 0, len(accepted)),
		Rejected: len(req.Items) - len(accepted),
	}
	for _, item := range accepted {
		result.Accepted = append(result.Accepted, FilteredItem{
			DiffItem:          item,
			MeaningfulChanges: filter.CountMeaningfulChanges(item.Diff, policy.StrictCounting),
			Files:             diff.Summarize(item.Diff),
		})
	}
	return c.JSON(http.StatusOK, result)
}

// listNotes serves the note archive with offset pagination.
func (s *Server) listNotes(c echo.Context) error {
	if s.archive == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "note archive is not configured")
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	archived, err := s.archive.List(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list archived notes")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notes": archived,
		"meta": map[string]interface{}{
			"offset": offset,
			"count":  len(archived),
		},
	})
}

// recordingSink tees every frame into a reconstruction state so completed
// note pairs can be archived, and flushes the response after each frame so
// fragments reach the consumer as they are generated.
type recordingSink struct {
	encoder *stream.Encoder
	flusher interface{ Flush() }
	state   reduce.State
}

func newRecordingSink(encoder *stream.Encoder, flusher interface{ Flush() }) *recordingSink {
	return &recordingSink{
		encoder: encoder,
		flusher: flusher,
		state:   reduce.NewState(),
	}
}

func (r *recordingSink) Encode(frame models.StreamFrame) error {
	if err := r.encoder.Encode(frame); err != nil {
		return err
	}
	if r.flusher != nil {
		r.flusher.Flush()
	}
	// The server-side reducer sees its own frames in order, so an error
	// outcome here can only be the terminal error frame; state keeps the
	// partial notes either way.
	r.state, _ = reduce.Apply(r.state, frame)
	return nil
}
