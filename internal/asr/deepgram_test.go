package asr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

const deepgramFixture = `{
  "results": {
    "channels": [
      {
        "alternatives": [
          {
            "transcript": "hello world how are you",
            "paragraphs": {
              "transcript": "Hello world.\n\nHow are you?"
            },
            "words": [
              {"word": "hello", "punctuated_word": "Hello", "start": 0.0, "end": 0.4, "speaker": 0},
              {"word": "world", "punctuated_word": "world.", "start": 0.5, "end": 0.9, "speaker": 0},
              {"word": "how", "punctuated_word": "How", "start": 1.2, "end": 1.4, "speaker": 1},
              {"word": "are", "start": 1.4, "end": 1.5, "speaker": 1},
              {"word": "you", "punctuated_word": "you?", "start": 1.5, "end": 1.8}
            ]
          }
        ]
      }
    ],
    "utterances": [
      {"speaker": 0, "transcript": "Hello world.", "start": 0.0, "end": 0.9},
      {"speaker": 1, "transcript": "How are you?", "start": 1.2, "end": 1.8}
    ],
    "summary": {"short": "A greeting exchange."},
    "topics": {
      "segments": [
        {"topics": [{"topic": "greetings"}, {"topic": "small talk"}]},
        {"topics": [{"topic": "wellbeing"}]}
      ]
    },
    "intents": {
      "segments": [
        {"intents": [{"intent": "greet someone"}]}
      ]
    }
  }
}`

func newTestDeepgram(t *testing.T, handler http.HandlerFunc) (*Deepgram, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	d, err := NewDeepgram(config.ASRConfig{BaseURL: srv.URL}, "en-US", "test-key")
	if err != nil {
		t.Fatal(err)
	}
	return d, srv
}

func TestDeepgramTranscribeURL(t *testing.T) {
	var gotAuth, gotContentType string
	var gotQuery map[string][]string
	var gotBody map[string]string

	d, _ := newTestDeepgram(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(deepgramFixture))
	})

	res, err := d.TranscribeURL(context.Background(), "https://example.com/audio.mp3")
	if err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Token test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["url"] != "https://example.com/audio.mp3" {
		t.Errorf("body url = %q", gotBody["url"])
	}

	wantParams := map[string]string{
		"model":        "nova-2",
		"language":     "en-US",
		"smart_format": "true",
		"diarize":      "true",
		"punctuate":    "true",
		"paragraphs":   "true",
		"utterances":   "true",
		"topics":       "true",
		"intents":      "true",
		"summarize":    "v2",
	}
	for key, want := range wantParams {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query %s = %v, want %q", key, got, want)
		}
	}

	ext := res.Extraction()
	if ext.FormattedText != "Hello world.\n\nHow are you?" {
		t.Errorf("formatted text = %q", ext.FormattedText)
	}
	if ext.Text != "hello world how are you" {
		t.Errorf("text = %q", ext.Text)
	}
	if ext.Summary != "A greeting exchange." {
		t.Errorf("summary = %q", ext.Summary)
	}
}

func TestDeepgramExtractionTokens(t *testing.T) {
	d, _ := newTestDeepgram(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(deepgramFixture))
	})

	res, err := d.TranscribeBuffer(context.Background(), []byte("audio"), "audio/mpeg")
	if err != nil {
		t.Fatal(err)
	}

	ext := res.Extraction()

	wantTokens := []transcript.Token{
		{Text: "Hello", Speaker: "speaker_0", Kind: transcript.KindWord, StartMs: 0, EndMs: 400},
		{Text: "world.", Speaker: "speaker_0", Kind: transcript.KindWord, StartMs: 500, EndMs: 900},
		{Text: "How", Speaker: "speaker_1", Kind: transcript.KindWord, StartMs: 1200, EndMs: 1400},
		{Text: "are", Speaker: "speaker_1", Kind: transcript.KindWord, StartMs: 1400, EndMs: 1500},
		{Text: "you?", Speaker: "", Kind: transcript.KindWord, StartMs: 1500, EndMs: 1800},
	}
	if !reflect.DeepEqual(ext.Tokens, wantTokens) {
		t.Errorf("tokens = %+v, want %+v", ext.Tokens, wantTokens)
	}

	wantUtterances := []transcript.Utterance{
		{Speaker: "speaker_0", Text: "Hello world.", StartMs: 0, EndMs: 900},
		{Speaker: "speaker_1", Text: "How are you?", StartMs: 1200, EndMs: 1800},
	}
	if !reflect.DeepEqual(ext.Utterances, wantUtterances) {
		t.Errorf("utterances = %+v, want %+v", ext.Utterances, wantUtterances)
	}

	wantTopics := [][]string{{"greetings", "small talk"}, {"wellbeing"}}
	if !reflect.DeepEqual(ext.TopicSegments, wantTopics) {
		t.Errorf("topic segments = %v", ext.TopicSegments)
	}
	wantIntents := [][]string{{"greet someone"}}
	if !reflect.DeepEqual(ext.IntentSegments, wantIntents) {
		t.Errorf("intent segments = %v", ext.IntentSegments)
	}
}

func TestDeepgramTranscribeBufferContentType(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	d, _ := newTestDeepgram(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"results":{}}`))
	})

	_, err := d.TranscribeBuffer(context.Background(), []byte("raw-audio"), "audio/wav")
	if err != nil {
		t.Fatal(err)
	}
	if gotContentType != "audio/wav" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if string(gotBody) != "raw-audio" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestDeepgramErrorStatus(t *testing.T) {
	d, _ := newTestDeepgram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"err_msg":"invalid credentials"}`))
	})

	_, err := d.TranscribeURL(context.Background(), "https://example.com/a.mp3")
	if err == nil {
		t.Fatal("expected error")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if perr.Vendor != "deepgram" {
		t.Errorf("vendor = %q", perr.Vendor)
	}
}

func TestDeepgramEmptyResponse(t *testing.T) {
	d, _ := newTestDeepgram(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{}}`))
	})

	res, err := d.TranscribeBuffer(context.Background(), []byte("x"), "audio/mpeg")
	if err != nil {
		t.Fatal(err)
	}

	ext := res.Extraction()
	if ext.Text != "" || ext.FormattedText != "" || len(ext.Tokens) != 0 {
		t.Errorf("expected empty extraction, got %+v", ext)
	}
}

func TestNewDeepgramRequiresKey(t *testing.T) {
	if _, err := NewDeepgram(config.ASRConfig{}, "en-US", ""); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestSpeakerLabel(t *testing.T) {
	two := 2
	tests := []struct {
		name     string
		speaker  *int
		expected string
	}{
		{name: "Nil speaker", speaker: nil, expected: ""},
		{name: "Indexed speaker", speaker: &two, expected: "speaker_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := speakerLabel(tt.speaker); got != tt.expected {
				t.Errorf("speakerLabel() = %q, want %q", got, tt.expected)
			}
		})
	}
}
