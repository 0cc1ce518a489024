package transcript

import "strings"

// AssembleUtterances reconstructs speaker-attributed utterances from a flat,
// time-ordered token stream. A new utterance opens whenever a word token
// carries a different speaker label than the previous word token; punctuation
// tokens attach to the preceding word with no separator and never break a
// speaker run. Tokens with empty text are skipped. Timing is copied from the
// first and last constituent token of each utterance, unvalidated.
//
// The input must already be time-ordered; this is a precondition, not
// something the assembler checks.
func AssembleUtterances(tokens []Token) []Utterance {
	var (
		out     []Utterance
		buf     strings.Builder
		speaker string
		startMs int64
		endMs   int64
		open    bool
	)

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		out = append(out, Utterance{
			Speaker: speaker,
			Text:    strings.TrimSpace(buf.String()),
			StartMs: startMs,
			EndMs:   endMs,
		})
		buf.Reset()
		open = false
	}

	for _, tok := range tokens {
		if tok.Text == "" {
			continue
		}

		if tok.Kind == KindPunctuation {
			buf.WriteString(tok.Text)
			if !open {
				startMs = tok.StartMs
				open = true
			}
			endMs = tok.EndMs
			continue
		}

		if tok.Speaker != speaker {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(tok.Text)
		if !open {
			startMs = tok.StartMs
			open = true
		}
		endMs = tok.EndMs
		speaker = tok.Speaker
	}

	flush()
	return out
}
