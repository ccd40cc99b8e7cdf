// Package stream folds an OpenAI-style server-sent-events body into the
// complete reply text.
package stream

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedFragment is returned for a data line whose payload is not
	// valid JSON. The fold stays usable; callers log and continue.
	ErrMalformedFragment = errors.New("malformed stream fragment")
	// ErrResponseTooLarge is terminal: the accumulated reply hit its bound.
	ErrResponseTooLarge = errors.New("accumulated response exceeds limit")
)

const (
	dataPrefix    = "data:"
	heartbeatMark = "PROCESSING"
	doneSentinel  = "[DONE]"
)

// Event is the subset of a chat-completion chunk the fold reads.
type Event struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Delta Delta `json:"delta"`
}

type Delta struct {
	Content *string `json:"content,omitempty"`
}

// Accumulator owns the reply text of one turn. It is not safe for
// concurrent use and must not be shared between turns.
type Accumulator struct {
	text     strings.Builder
	maxBytes int

	fragments int
	skipped   int
}

// NewAccumulator returns an empty fold. maxBytes <= 0 means unbounded.
func NewAccumulator(maxBytes int) *Accumulator {
	return &Accumulator{maxBytes: maxBytes}
}

// Fold applies one line of the event stream.
func (a *Accumulator) Fold(line []byte) error {
	if !isCandidate(line) {
		return nil
	}

	var event Event
	if err := json.Unmarshal(line[len(dataPrefix):], &event); err != nil {
		a.skipped++
		return errors.Wrapf(ErrMalformedFragment, "%v: %q", err, truncate(line, 120))
	}

	content := event.content()
	if content == "" {
		return nil
	}
	if a.maxBytes > 0 && a.text.Len()+len(content) > a.maxBytes {
		return errors.Wrapf(ErrResponseTooLarge, "limit %d bytes", a.maxBytes)
	}
	a.text.WriteString(content)
	a.fragments++
	return nil
}

func (a *Accumulator) Text() string {
	return a.text.String()
}

// Fragments is the number of deltas appended so far.
func (a *Accumulator) Fragments() int {
	return a.fragments
}

// Skipped is the number of data lines dropped as malformed.
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// isCandidate keeps non-blank data lines that are neither heartbeats nor the
// termination sentinel. The marker checks match anywhere in the line.
func isCandidate(line []byte) bool {
	if len(bytes.TrimSpace(line)) == 0 {
		return false
	}
	if bytes.Contains(line, []byte(heartbeatMark)) || bytes.Contains(line, []byte(doneSentinel)) {
		return false
	}
	return bytes.HasPrefix(line, []byte(dataPrefix))
}

func (e *Event) content() string {
	if len(e.Choices) == 0 || e.Choices[0].Delta.Content == nil {
		return ""
	}
	return *e.Choices[0].Delta.Content
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
