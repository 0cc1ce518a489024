// Package store defines the persistence collaborator for enriched
// transcripts and provides an in-memory reference implementation.
package store

import (
	"errors"
	"time"

	"github.com/voxnotes/voxnotes/internal/transcript"
)

// ErrNotFound is returned when no recording exists for an id.
var ErrNotFound = errors.New("recording not found")

// Recording is one stored conversation: the enriched transcript plus the
// metadata the service tracks about it.
type Recording struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DurationSec float64            `json:"duration_seconds,omitempty"`
	AudioPath   string             `json:"audio_path,omitempty"`
	Result      *transcript.Record `json:"result"`
}

// Store is the durable-persistence collaborator. The pipeline has no
// knowledge of how or where recordings are kept.
type Store interface {
	// Save stores a recording under its ID, overwriting any previous value.
	Save(rec *Recording) error

	// Get returns the recording for id, or ErrNotFound.
	Get(id string) (*Recording, error)

	// List returns all recordings, newest first.
	List() ([]*Recording, error)

	// Delete removes the recording for id, or returns ErrNotFound.
	Delete(id string) error

	// UpdateResult replaces the title and/or transcript text of a stored
	// recording. Nil fields are left unchanged.
	UpdateResult(id string, title, transcriptText *string) (*Recording, error)

	// SetResult attaches a finished transcription result to a recording,
	// leaving every other field untouched. Returns ErrNotFound when the
	// recording was deleted while transcription ran.
	SetResult(id string, result *transcript.Record) (*Recording, error)
}
