// Package pipeline wires a speech-recognition provider and a text generator
// into the transcription flow: audio in, enriched transcript record out.
package pipeline

import (
	"context"
	"fmt"

	"github.com/voxnotes/voxnotes/internal/asr"
	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/llm"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

// Pipeline processes recordings through transcription and enrichment. It is
// request-scoped and stateless between invocations: every Process call is
// independent and shares nothing with concurrent calls.
type Pipeline struct {
	provider asr.Provider
	builder  *transcript.Builder
}

// New creates a pipeline from configuration. The passphrase decrypts API
// keys stored with the enc: prefix; pass "" when keys are plain.
func New(cfg *config.Config, passphrase string) (*Pipeline, error) {
	asrKey, err := config.ResolveKey(cfg.ASR.APIKey, passphrase)
	if err != nil {
		return nil, fmt.Errorf("resolve ASR key: %w", err)
	}
	genKey, err := config.ResolveKey(cfg.Generation.APIKey, passphrase)
	if err != nil {
		return nil, fmt.Errorf("resolve generation key: %w", err)
	}

	provider, err := asr.New(cfg.ASR.Provider, cfg.ASR, cfg.Language, asrKey)
	if err != nil {
		return nil, fmt.Errorf("create transcription provider: %w", err)
	}

	gen, err := llm.New(cfg.Generation.Provider, cfg.Generation, genKey)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	return NewWith(provider, gen), nil
}

// NewWith creates a pipeline from already-constructed collaborators.
// Tests substitute fakes here without touching the environment.
func NewWith(provider asr.Provider, gen llm.Generator) *Pipeline {
	return &Pipeline{
		provider: provider,
		builder:  transcript.NewBuilder(gen),
	}
}

// ProviderName returns the configured vendor name.
func (p *Pipeline) ProviderName() string {
	return p.provider.Name()
}

// ProcessURL transcribes and enriches audio fetchable at url.
func (p *Pipeline) ProcessURL(ctx context.Context, url string) (*transcript.Record, error) {
	raw, err := p.provider.TranscribeURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.builder.Build(ctx, raw.Extraction())
}

// ProcessBuffer transcribes and enriches raw audio bytes.
func (p *Pipeline) ProcessBuffer(ctx context.Context, audio []byte, mimeType string) (*transcript.Record, error) {
	raw, err := p.provider.TranscribeBuffer(ctx, audio, mimeType)
	if err != nil {
		return nil, err
	}
	return p.builder.Build(ctx, raw.Extraction())
}
