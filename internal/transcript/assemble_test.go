package transcript

import (
	"reflect"
	"testing"
)

func word(text, speaker string, start, end int64) Token {
	return Token{Text: text, Speaker: speaker, Kind: KindWord, StartMs: start, EndMs: end}
}

func punct(text string, start, end int64) Token {
	return Token{Text: text, Kind: KindPunctuation, StartMs: start, EndMs: end}
}

func TestAssembleUtterances(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []Token
		expected []Utterance
	}{
		{
			name:     "Empty stream",
			tokens:   nil,
			expected: nil,
		},
		{
			name: "Single speaker with punctuation",
			tokens: []Token{
				word("Hello", "speaker_0", 0, 400),
				punct(",", 400, 400),
				word("world", "speaker_0", 500, 900),
				punct(".", 900, 900),
			},
			expected: []Utterance{
				{Speaker: "speaker_0", Text: "Hello, world.", StartMs: 0, EndMs: 900},
			},
		},
		{
			name: "Speaker change opens a new utterance",
			tokens: []Token{
				word("Hi", "speaker_0", 0, 200),
				word("there", "speaker_1", 300, 600),
			},
			expected: []Utterance{
				{Speaker: "speaker_0", Text: "Hi", StartMs: 0, EndMs: 200},
				{Speaker: "speaker_1", Text: "there", StartMs: 300, EndMs: 600},
			},
		},
		{
			name: "Punctuation never breaks a speaker run",
			tokens: []Token{
				word("Yes", "speaker_0", 0, 200),
				punct(".", 200, 200),
				word("Absolutely", "speaker_0", 300, 800),
				punct(".", 800, 800),
			},
			expected: []Utterance{
				{Speaker: "speaker_0", Text: "Yes. Absolutely.", StartMs: 0, EndMs: 800},
			},
		},
		{
			name: "Empty text tokens are skipped",
			tokens: []Token{
				word("One", "speaker_0", 0, 100),
				word("", "speaker_1", 100, 200),
				word("two", "speaker_0", 200, 300),
			},
			expected: []Utterance{
				{Speaker: "speaker_0", Text: "One two", StartMs: 0, EndMs: 300},
			},
		},
		{
			name: "Unlabeled tokens group together",
			tokens: []Token{
				word("no", "", 0, 100),
				word("labels", "", 100, 300),
				word("here", "", 300, 500),
			},
			expected: []Utterance{
				{Speaker: "", Text: "no labels here", StartMs: 0, EndMs: 500},
			},
		},
		{
			name: "Zero length tokens keep their timing",
			tokens: []Token{
				word("beep", "speaker_0", 150, 150),
			},
			expected: []Utterance{
				{Speaker: "speaker_0", Text: "beep", StartMs: 150, EndMs: 150},
			},
		},
		{
			name: "Alternating speakers",
			tokens: []Token{
				word("A", "speaker_0", 0, 100),
				word("B", "speaker_1", 100, 200),
				word("C", "speaker_0", 200, 300),
			},
			expected: []Utterance{
				{Speaker: "speaker_0", Text: "A", StartMs: 0, EndMs: 100},
				{Speaker: "speaker_1", Text: "B", StartMs: 100, EndMs: 200},
				{Speaker: "speaker_0", Text: "C", StartMs: 200, EndMs: 300},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssembleUtterances(tt.tokens)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("AssembleUtterances() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestAssembleUtterancesRunCount(t *testing.T) {
	// The number of utterances equals the number of speaker changes among
	// word tokens, regardless of interleaved punctuation.
	tokens := []Token{
		word("one", "a", 0, 1),
		punct(".", 1, 1),
		word("two", "a", 2, 3),
		word("three", "b", 4, 5),
		punct("!", 5, 5),
		word("four", "b", 6, 7),
		word("five", "a", 8, 9),
	}

	got := AssembleUtterances(tokens)
	if len(got) != 3 {
		t.Fatalf("expected 3 utterances, got %d: %+v", len(got), got)
	}
	if got[0].Text != "one. two" || got[1].Text != "three! four" || got[2].Text != "five" {
		t.Errorf("unexpected utterance texts: %+v", got)
	}
}
