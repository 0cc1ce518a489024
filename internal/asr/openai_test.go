package asr

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voxnotes/voxnotes/internal/config"
)

func TestFileNameForMIME(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		expected string
	}{
		{name: "MP3", mimeType: "audio/mpeg", expected: "audio.mp3"},
		{name: "MP3 alias", mimeType: "audio/mp3", expected: "audio.mp3"},
		{name: "M4A", mimeType: "audio/mp4", expected: "audio.m4a"},
		{name: "M4A x-prefix", mimeType: "audio/x-m4a", expected: "audio.m4a"},
		{name: "WAV", mimeType: "audio/wav", expected: "audio.wav"},
		{name: "FLAC", mimeType: "audio/flac", expected: "audio.flac"},
		{name: "Ogg", mimeType: "application/ogg", expected: "audio.ogg"},
		{name: "WebM", mimeType: "video/webm", expected: "audio.webm"},
		{name: "Unknown falls back to mp3", mimeType: "application/octet-stream", expected: "audio.mp3"},
		{name: "Empty falls back to mp3", mimeType: "", expected: "audio.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileNameForMIME(tt.mimeType); got != tt.expected {
				t.Errorf("fileNameForMIME(%q) = %q, want %q", tt.mimeType, got, tt.expected)
			}
		})
	}
}

func TestWhisperExtraction(t *testing.T) {
	r := &whisperResult{resp: openai.AudioResponse{Text: "flat transcript only"}}

	ext := r.Extraction()
	if ext.Text != "flat transcript only" {
		t.Errorf("text = %q", ext.Text)
	}
	// Whisper carries no diarization or enrichment data.
	if ext.FormattedText != "" || len(ext.Utterances) != 0 || len(ext.Tokens) != 0 ||
		ext.Summary != "" || len(ext.TopicSegments) != 0 || len(ext.IntentSegments) != 0 {
		t.Errorf("expected flat-text-only extraction, got %+v", ext)
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(config.ASRConfig{}, ""); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestProviderFactory(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
		wantName string
	}{
		{name: "Deepgram", provider: "deepgram", wantName: "deepgram"},
		{name: "OpenAI", provider: "openai", wantName: "openai"},
		{name: "Unsupported", provider: "whisperx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.provider, config.ASRConfig{}, "en-US", "key")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}
