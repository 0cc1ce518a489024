package asr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

// OpenAI implements Provider using the OpenAI Whisper API. Whisper returns
// no diarization, summary, or topic data, so its extraction carries only the
// flat transcript; utterances come out empty downstream.
type OpenAI struct {
	client *openai.Client
	model  string
	http   *http.Client
}

// NewOpenAI creates a new OpenAI Whisper provider.
// The apiKey parameter is the resolved (decrypted) API key.
func NewOpenAI(cfg config.ASRConfig, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		http: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Name returns the vendor name.
func (o *OpenAI) Name() string {
	return "openai"
}

// TranscribeURL fetches the audio itself and submits the bytes: the Whisper
// API has no URL input.
func (o *OpenAI) TranscribeURL(ctx context.Context, audioURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, &ProviderError{Vendor: "openai", Err: err}
	}

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Vendor: "openai", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Vendor: "openai",
			Err:    fmt.Errorf("fetch audio: http %d", resp.StatusCode),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Vendor: "openai", Err: fmt.Errorf("fetch audio: %w", err)}
	}

	return o.TranscribeBuffer(ctx, audio, resp.Header.Get("Content-Type"))
}

// TranscribeBuffer submits raw audio bytes for transcription.
func (o *OpenAI) TranscribeBuffer(ctx context.Context, audio []byte, mimeType string) (Result, error) {
	req := openai.AudioRequest{
		Model:    o.model,
		Reader:   bytes.NewReader(audio),
		FilePath: fileNameForMIME(mimeType),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := o.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, &ProviderError{Vendor: "openai", Err: err}
	}

	return &whisperResult{resp: resp}, nil
}

// whisperResult wraps the verbose JSON response.
type whisperResult struct {
	resp openai.AudioResponse
}

func (r *whisperResult) Extraction() transcript.Extraction {
	return transcript.Extraction{
		Text: r.resp.Text,
	}
}

// fileNameForMIME picks an upload filename whose extension matches the audio
// container; the API rejects uploads it cannot type.
func fileNameForMIME(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return "audio.mp3"
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return "audio.m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "audio.wav"
	case "audio/flac", "audio/x-flac":
		return "audio.flac"
	case "audio/ogg", "application/ogg":
		return "audio.ogg"
	case "audio/webm", "video/webm":
		return "audio.webm"
	default:
		return "audio.mp3"
	}
}
