package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/voxnotes/voxnotes/internal/asr"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

// fakeProvider records what it was asked to transcribe and returns a fixed
// extraction.
type fakeProvider struct {
	ext      transcript.Extraction
	err      error
	gotURL   string
	gotMIME  string
	gotAudio []byte
}

type fakeResult struct{ ext transcript.Extraction }

func (r fakeResult) Extraction() transcript.Extraction { return r.ext }

func (p *fakeProvider) TranscribeURL(_ context.Context, url string) (asr.Result, error) {
	p.gotURL = url
	if p.err != nil {
		return nil, p.err
	}
	return fakeResult{ext: p.ext}, nil
}

func (p *fakeProvider) TranscribeBuffer(_ context.Context, audio []byte, mimeType string) (asr.Result, error) {
	p.gotAudio = audio
	p.gotMIME = mimeType
	if p.err != nil {
		return nil, p.err
	}
	return fakeResult{ext: p.ext}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

type fixedGen struct{ text string }

func (g fixedGen) Generate(_ context.Context, _ string, _ int) (string, error) {
	return g.text, nil
}
func (g fixedGen) Name() string { return "fixed" }

func TestProcessURL(t *testing.T) {
	provider := &fakeProvider{
		ext: transcript.Extraction{Text: "hello", Summary: "a summary"},
	}
	p := NewWith(provider, fixedGen{text: "Generated"})

	rec, err := p.ProcessURL(context.Background(), "https://example.com/a.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if provider.gotURL != "https://example.com/a.mp3" {
		t.Errorf("provider saw url %q", provider.gotURL)
	}
	if rec.Transcript != "hello" || rec.Summary != "a summary" || rec.Title != "Generated" {
		t.Errorf("record = %+v", rec)
	}
}

func TestProcessBuffer(t *testing.T) {
	provider := &fakeProvider{
		ext: transcript.Extraction{Text: "buffered", Summary: "s"},
	}
	p := NewWith(provider, fixedGen{text: "Title"})

	rec, err := p.ProcessBuffer(context.Background(), []byte("raw-audio"), "audio/wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(provider.gotAudio) != "raw-audio" || provider.gotMIME != "audio/wav" {
		t.Errorf("provider saw audio=%q mime=%q", provider.gotAudio, provider.gotMIME)
	}
	if rec.Transcript != "buffered" {
		t.Errorf("transcript = %q", rec.Transcript)
	}
}

func TestProcessBufferProviderError(t *testing.T) {
	want := &asr.ProviderError{Vendor: "fake", Err: errors.New("boom")}
	p := NewWith(&fakeProvider{err: want}, fixedGen{text: "t"})

	_, err := p.ProcessBuffer(context.Background(), []byte("audio"), "audio/mpeg")
	var perr *asr.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestProcessBufferNoTranscript(t *testing.T) {
	p := NewWith(&fakeProvider{}, fixedGen{text: "t"})

	_, err := p.ProcessBuffer(context.Background(), []byte("audio"), "audio/mpeg")
	if !errors.Is(err, transcript.ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
}

func TestProviderName(t *testing.T) {
	p := NewWith(&fakeProvider{}, fixedGen{})
	if p.ProviderName() != "fake" {
		t.Errorf("ProviderName() = %q", p.ProviderName())
	}
}
