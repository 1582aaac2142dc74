// Package reduce reconstructs per-item note pairs from a decoded frame
// stream. The reducer is pure: state goes in, updated state comes out, so a
// frame log can be replayed deterministically in tests.
package reduce

import (
	"errors"
	"fmt"

	"github.com/notewire/pkg/models"
)

// State maps diff item IDs to their accumulated notes.
type State map[string]*models.NoteState

// NewState returns an empty reconstruction state.
func NewState() State {
	return State{}
}

// ErrStream wraps the message of a terminal error frame. State accumulated
// before the error is retained by Apply.
var ErrStream = errors.New("stream error")

// Apply folds one frame into the state and returns the updated state.
// Content frames append through the overlap-safe merge; completion frames
// never touch text; tools frames replace the enrichment payload wholesale.
// An error frame returns ErrStream (wrapped with the frame message) as the
// caller's terminal signal.
func Apply(state State, frame models.StreamFrame) (State, error) {
	switch {
	case frame.IsError():
		return state, fmt.Errorf("%w: %s", ErrStream, frame.Message)

	case frame.IsTools():
		note := state.ensure(frame.PRID)
		note.Tools = frame.Tools

	case frame.IsDone():
		// Closure is inferred by the absence of further frames for the
		// channel; nothing to record here.
		state.ensure(frame.PRID)

	case frame.IsContent():
		note := state.ensure(frame.PRID)
		switch frame.Section {
		case models.ChannelDeveloper:
			note.Developer = Merge(note.Developer, frame.Content)
		case models.ChannelMarketing:
			note.Marketing = Merge(note.Marketing, frame.Content)
		}
	}

	return state, nil
}

func (s State) ensure(prID string) *models.NoteState {
	if note, ok := s[prID]; ok {
		return note
	}
	note := &models.NoteState{}
	s[prID] = note
	return note
}

// Merge appends fragment to prev, dropping the longest prefix of fragment
// that duplicates a suffix of prev. The upstream generation capability can
// re-emit boundary text around fragment splits, so the largest overlap is
// checked first; when none exists this is plain concatenation.
//
// Worst case is quadratic in the shorter input. Fragments are model output
// chunks, short in practice.
func Merge(prev, fragment string) string {
	if prev == "" {
		return fragment
	}
	if fragment == "" {
		return prev
	}

	max := len(prev)
	if len(fragment) < max {
		max = len(fragment)
	}

	for k := max; k > 0; k-- {
		if prev[len(prev)-k:] == fragment[:k] {
			return prev + fragment[k:]
		}
	}
	return prev + fragment
}
