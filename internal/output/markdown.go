// Package output provides export formatters for enriched transcripts.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/voxnotes/voxnotes/internal/transcript"
)

// WriteMarkdown writes an enriched transcript to a markdown file.
func WriteMarkdown(outputPath string, rec *transcript.Record) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", rec.Title))
	b.WriteString(fmt.Sprintf("**Transcribed:** %s\n", time.Now().Format("2006-01-02 15:04:05")))
	if len(rec.Topics) > 0 {
		b.WriteString(fmt.Sprintf("**Topics:** %s\n", strings.Join(rec.Topics, ", ")))
	}
	if len(rec.Intents) > 0 {
		b.WriteString(fmt.Sprintf("**Intents:** %s\n", strings.Join(rec.Intents, ", ")))
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString(rec.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Transcript\n\n")
	if len(rec.Utterances) > 0 {
		for _, u := range rec.Utterances {
			speaker := u.Speaker
			if speaker == "" {
				speaker = "unknown"
			}
			b.WriteString(fmt.Sprintf("[%s] **%s:** %s\n\n",
				formatTimestamp(u.StartMs), speaker, strings.TrimSpace(u.Text)))
		}
	} else {
		b.WriteString(rec.Transcript)
		b.WriteString("\n")
	}

	return os.WriteFile(outputPath, []byte(b.String()), 0644)
}

// formatTimestamp formats milliseconds as MM:SS or HH:MM:SS.
func formatTimestamp(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
