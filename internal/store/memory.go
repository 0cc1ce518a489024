package store

import (
	"sort"
	"sync"
	"time"

	"github.com/voxnotes/voxnotes/internal/transcript"
)

// MemoryStore keeps recordings in process memory. It is the reference Store
// implementation and the backing store for `voxnotes serve` when no durable
// collaborator is attached.
type MemoryStore struct {
	mu         sync.RWMutex
	recordings map[string]*Recording
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recordings: make(map[string]*Recording),
	}
}

// Save stores a recording under its ID.
func (s *MemoryStore) Save(rec *Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.recordings[rec.ID] = &cp
	return nil
}

// Get returns the recording for id, or ErrNotFound.
func (s *MemoryStore) Get(id string) (*Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns all recordings, newest first.
func (s *MemoryStore) List() ([]*Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Recording, 0, len(s.recordings))
	for _, rec := range s.recordings {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the recording for id, or returns ErrNotFound.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recordings[id]; !ok {
		return ErrNotFound
	}
	delete(s.recordings, id)
	return nil
}

// SetResult attaches a transcription result under the store's lock, so it
// cannot clobber edits that landed while transcription ran.
func (s *MemoryStore) SetResult(id string, result *transcript.Record) (*Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Result = result
	rec.UpdatedAt = time.Now()

	cp := *rec
	return &cp, nil
}

// UpdateResult replaces the title and/or transcript text of a recording.
func (s *MemoryStore) UpdateResult(id string, title, transcriptText *string) (*Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Result != nil {
		if title != nil {
			rec.Result.Title = *title
		}
		if transcriptText != nil {
			rec.Result.Transcript = *transcriptText
		}
	}
	rec.UpdatedAt = time.Now()

	cp := *rec
	return &cp, nil
}
