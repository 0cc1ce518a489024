// Package asr abstracts over prerecorded speech-recognition vendors.
//
// Each vendor adapter returns its raw response behind the Result interface;
// the vendor-specific shape never leaves this package. Extraction() is the
// single translation point into the vendor-agnostic fields the transcript
// builder consumes.
package asr

import (
	"context"
	"fmt"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

// Features is the fixed recognition feature request sent with every call.
// Not every vendor supports every feature; adapters ignore what they cannot
// request.
type Features struct {
	Model       string
	Language    string
	SmartFormat bool
	Diarize     bool
	Punctuate   bool
	Paragraphs  bool
	Utterances  bool
	Topics      bool
	Intents     bool
	Summarize   string // Deepgram summarization version ("v2"), empty to disable
}

// DefaultFeatures mirrors the request the service always makes: diarization,
// punctuation, paragraph grouping, topic/intent detection, and vendor-native
// summarization where supported.
func DefaultFeatures(model, language string) Features {
	if language == "" {
		language = "en-US"
	}
	return Features{
		Model:       model,
		Language:    language,
		SmartFormat: true,
		Diarize:     true,
		Punctuate:   true,
		Paragraphs:  true,
		Utterances:  true,
		Topics:      true,
		Intents:     true,
		Summarize:   "v2",
	}
}

// Result is a raw vendor response. Extraction is the only way out.
type Result interface {
	Extraction() transcript.Extraction
}

// Provider converts recorded audio into a raw transcription result.
// Implementations hold no state between calls and perform no retries;
// retry policy belongs to the caller.
type Provider interface {
	// TranscribeURL transcribes audio fetchable by the vendor at url.
	TranscribeURL(ctx context.Context, url string) (Result, error)

	// TranscribeBuffer transcribes raw audio bytes of the given MIME type.
	TranscribeBuffer(ctx context.Context, audio []byte, mimeType string) (Result, error)

	// Name returns the vendor name.
	Name() string
}

// ProviderError wraps a failed vendor call: network failure, authentication
// failure, or a vendor-reported processing error.
type ProviderError struct {
	Vendor string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Vendor, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// New creates a Provider based on configuration.
// The apiKey parameter is the resolved (decrypted) API key.
func New(provider string, cfg config.ASRConfig, language, apiKey string) (Provider, error) {
	switch provider {
	case "deepgram":
		return NewDeepgram(cfg, language, apiKey)
	case "openai":
		return NewOpenAI(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}
