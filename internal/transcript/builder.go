package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voxnotes/voxnotes/internal/llm"
)

var (
	// ErrNoTranscript is returned when a provider result carries neither a
	// formatted nor a flat transcript. Nothing downstream runs in that case.
	ErrNoTranscript = errors.New("transcription result contains no transcript text")

	// ErrSummaryGeneration is returned when no provider summary exists and
	// the generative fallback fails or produces empty text.
	ErrSummaryGeneration = errors.New("summary generation failed")

	// ErrTitleGeneration is returned when title generation fails or
	// produces empty text.
	ErrTitleGeneration = errors.New("title generation failed")
)

const (
	summaryPrompt = "Generate a concise 2-3 sentence summary of the following transcript. " +
		"Provide only the summary with no additional text or formatting: "
	titlePrompt = "Generate a short, succinct title (3-6 words) for the following conversation. " +
		"Return only the title with no additional text, punctuation, or formatting: "

	summaryMaxTokens = 1000
	titleMaxTokens   = 200
)

// Builder assembles enriched transcript records from vendor-agnostic
// extractions. It is stateless between calls; one Builder may serve
// concurrent requests.
type Builder struct {
	gen llm.Generator
}

// NewBuilder creates a Builder that uses gen for summary and title fallbacks.
func NewBuilder(gen llm.Generator) *Builder {
	return &Builder{gen: gen}
}

// Build produces the canonical record for one recording, or fails with
// ErrNoTranscript, ErrSummaryGeneration, or ErrTitleGeneration. There is no
// partial output: either every field is populated or an error is returned.
func (b *Builder) Build(ctx context.Context, ext Extraction) (*Record, error) {
	text := ext.FormattedText
	if strings.TrimSpace(text) == "" {
		text = ext.Text
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoTranscript
	}

	// Vendor-grouped utterances win over the raw token stream.
	utterances := ext.Utterances
	if len(utterances) == 0 && len(ext.Tokens) > 0 {
		utterances = AssembleUtterances(ext.Tokens)
	}
	if utterances == nil {
		utterances = []Utterance{}
	}

	summary, err := b.resolveSummary(ctx, text, ext.Summary)
	if err != nil {
		return nil, err
	}

	// Title generation consumes the resolved summary, so it runs second.
	title, err := b.resolveTitle(ctx, summary, text)
	if err != nil {
		return nil, err
	}

	return &Record{
		Transcript: text,
		Title:      title,
		Summary:    summary,
		Utterances: utterances,
		Topics:     flattenSegments(ext.TopicSegments),
		Intents:    flattenSegments(ext.IntentSegments),
	}, nil
}

// resolveSummary returns the provider summary verbatim when present,
// otherwise asks the generator for a short summary of the transcript.
func (b *Builder) resolveSummary(ctx context.Context, transcript, providerSummary string) (string, error) {
	if strings.TrimSpace(providerSummary) != "" {
		return providerSummary, nil
	}

	text, err := b.gen.Generate(ctx, summaryPrompt+transcript, summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: generator returned empty text", ErrSummaryGeneration)
	}
	return text, nil
}

// resolveTitle always generates: no supported vendor produces titles. The
// summary is the preferred input; the transcript is the defensive fallback.
func (b *Builder) resolveTitle(ctx context.Context, summary, transcript string) (string, error) {
	input := summary
	if strings.TrimSpace(input) == "" {
		input = transcript
	}

	text, err := b.gen.Generate(ctx, titlePrompt+input, titleMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTitleGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: generator returned empty text", ErrTitleGeneration)
	}
	return text, nil
}

// flattenSegments concatenates per-segment entries in segment order.
// Duplicates are kept: the output mirrors provider segment granularity.
func flattenSegments(segments [][]string) []string {
	out := make([]string, 0)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out
}
