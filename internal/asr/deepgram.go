package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

const deepgramBaseURL = "https://api.deepgram.com"

// Deepgram implements Provider using the Deepgram prerecorded REST API.
type Deepgram struct {
	apiKey   string
	baseURL  string
	features Features
	client   *http.Client
}

// NewDeepgram creates a new Deepgram provider.
// The apiKey parameter is the resolved (decrypted) API key.
func NewDeepgram(cfg config.ASRConfig, language, apiKey string) (*Deepgram, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Deepgram API key not provided")
	}

	model := cfg.Model
	if model == "" {
		model = "nova-2"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepgramBaseURL
	}

	return &Deepgram{
		apiKey:   apiKey,
		baseURL:  baseURL,
		features: DefaultFeatures(model, language),
		client: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}, nil
}

// Name returns the vendor name.
func (d *Deepgram) Name() string {
	return "deepgram"
}

// TranscribeURL submits a fetchable audio URL for transcription.
func (d *Deepgram) TranscribeURL(ctx context.Context, audioURL string) (Result, error) {
	body, err := json.Marshal(map[string]string{"url": audioURL})
	if err != nil {
		return nil, &ProviderError{Vendor: "deepgram", Err: err}
	}
	return d.listen(ctx, bytes.NewReader(body), "application/json")
}

// TranscribeBuffer submits raw audio bytes for transcription.
func (d *Deepgram) TranscribeBuffer(ctx context.Context, audio []byte, mimeType string) (Result, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return d.listen(ctx, bytes.NewReader(audio), mimeType)
}

func (d *Deepgram) listen(ctx context.Context, body io.Reader, contentType string) (Result, error) {
	endpoint := d.baseURL + "/v1/listen?" + d.query().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &ProviderError{Vendor: "deepgram", Err: err}
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Vendor: "deepgram", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{
			Vendor: "deepgram",
			Err:    fmt.Errorf("http %d: %s", resp.StatusCode, string(msg)),
		}
	}

	var dr deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, &ProviderError{Vendor: "deepgram", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &dr, nil
}

func (d *Deepgram) query() url.Values {
	f := d.features
	q := url.Values{}
	q.Set("model", f.Model)
	q.Set("language", f.Language)
	q.Set("smart_format", strconv.FormatBool(f.SmartFormat))
	q.Set("diarize", strconv.FormatBool(f.Diarize))
	q.Set("punctuate", strconv.FormatBool(f.Punctuate))
	q.Set("paragraphs", strconv.FormatBool(f.Paragraphs))
	q.Set("utterances", strconv.FormatBool(f.Utterances))
	q.Set("topics", strconv.FormatBool(f.Topics))
	q.Set("intents", strconv.FormatBool(f.Intents))
	if f.Summarize != "" {
		q.Set("summarize", f.Summarize)
	}
	return q
}

// deepgramResponse is the subset of the prerecorded response this service
// reads. Field shapes follow the vendor's sync JSON payload.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Paragraphs *struct {
					Transcript string `json:"transcript"`
				} `json:"paragraphs,omitempty"`
				Words []deepgramWord `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Speaker    *int    `json:"speaker"`
			Transcript string  `json:"transcript"`
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
		} `json:"utterances"`
		Summary *struct {
			Short string `json:"short"`
		} `json:"summary"`
		Topics *struct {
			Segments []struct {
				Topics []struct {
					Topic string `json:"topic"`
				} `json:"topics"`
			} `json:"segments"`
		} `json:"topics"`
		Intents *struct {
			Segments []struct {
				Intents []struct {
					Intent string `json:"intent"`
				} `json:"intents"`
			} `json:"segments"`
		} `json:"intents"`
	} `json:"results"`
}

type deepgramWord struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Speaker        *int    `json:"speaker"`
}

// Extraction maps the raw payload into the vendor-agnostic shape. The first
// alternative of the first channel is authoritative, matching how the vendor
// ranks hypotheses.
func (r *deepgramResponse) Extraction() transcript.Extraction {
	var ext transcript.Extraction

	if len(r.Results.Channels) > 0 && len(r.Results.Channels[0].Alternatives) > 0 {
		alt := r.Results.Channels[0].Alternatives[0]
		ext.Text = alt.Transcript
		if alt.Paragraphs != nil {
			ext.FormattedText = alt.Paragraphs.Transcript
		}
		for _, w := range alt.Words {
			text := w.PunctuatedWord
			if text == "" {
				text = w.Word
			}
			ext.Tokens = append(ext.Tokens, transcript.Token{
				Text:    text,
				Speaker: speakerLabel(w.Speaker),
				Kind:    transcript.KindWord,
				StartMs: toMillis(w.Start),
				EndMs:   toMillis(w.End),
			})
		}
	}

	for _, u := range r.Results.Utterances {
		ext.Utterances = append(ext.Utterances, transcript.Utterance{
			Speaker: speakerLabel(u.Speaker),
			Text:    u.Transcript,
			StartMs: toMillis(u.Start),
			EndMs:   toMillis(u.End),
		})
	}

	if r.Results.Summary != nil {
		ext.Summary = r.Results.Summary.Short
	}

	if r.Results.Topics != nil {
		for _, seg := range r.Results.Topics.Segments {
			topics := make([]string, 0, len(seg.Topics))
			for _, t := range seg.Topics {
				topics = append(topics, t.Topic)
			}
			ext.TopicSegments = append(ext.TopicSegments, topics)
		}
	}
	if r.Results.Intents != nil {
		for _, seg := range r.Results.Intents.Segments {
			intents := make([]string, 0, len(seg.Intents))
			for _, i := range seg.Intents {
				intents = append(intents, i.Intent)
			}
			ext.IntentSegments = append(ext.IntentSegments, intents)
		}
	}

	return ext
}

// speakerLabel renders the vendor's numeric speaker index as a stable label.
// Unattributed tokens share the empty label so they group together.
func speakerLabel(speaker *int) string {
	if speaker == nil {
		return ""
	}
	return "speaker_" + strconv.Itoa(*speaker)
}

func toMillis(seconds float64) int64 {
	return int64(seconds * 1000)
}
