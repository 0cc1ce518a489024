// Package transcript turns raw speech-recognition output into a single
// enriched transcript record, independent of which vendor produced it.
package transcript

// TokenKind distinguishes recognized words from punctuation marks.
type TokenKind int

const (
	KindWord TokenKind = iota
	KindPunctuation
)

// Token is the smallest recognized unit of a transcription: a word or a
// punctuation mark with timing. Tokens exist only as an intermediate view
// over a provider result and are consumed once during utterance assembly.
type Token struct {
	Text    string
	Speaker string // diarization label; empty when the provider did not attribute the token
	Kind    TokenKind
	StartMs int64
	EndMs   int64
}

// Utterance is one continuous span of speech attributed to a single speaker.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// Extraction holds the vendor-agnostic fields pulled out of a raw provider
// response. Every field is optional except that at least one of
// FormattedText/Text must be non-empty for a build to succeed.
type Extraction struct {
	// FormattedText is the paragraph-formatted transcript, when the vendor
	// provides one. Preferred over Text.
	FormattedText string

	// Text is the flat transcript.
	Text string

	// Utterances are vendor-grouped speaker spans. When present they take
	// precedence over Tokens.
	Utterances []Utterance

	// Tokens is the raw word stream, used to assemble utterances when the
	// vendor did not group them.
	Tokens []Token

	// Summary is the vendor-native conversation summary, if requested and
	// supported.
	Summary string

	// TopicSegments and IntentSegments hold per-segment detection results
	// in segment order.
	TopicSegments  [][]string
	IntentSegments [][]string
}

// Record is the canonical enriched transcript handed to persistence.
// Transcript is never empty; Title and Summary are always populated.
type Record struct {
	Transcript string      `json:"transcript"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Utterances []Utterance `json:"utterances"`
	Topics     []string    `json:"topics"`
	Intents    []string    `json:"intents"`
}
