// Package cli implements the voxnotes command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/voxnotes/voxnotes/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "voxnotes",
	Short:   "Transcribe and enrich recorded conversations",
	Version: version.Version,
	Long: `Voxnotes turns recorded conversations into enriched transcripts:
full text, per-speaker utterances, a summary, a title, and detected
topics and intents. Transcription runs against a configured speech
provider; summaries and titles fall back to a text-generation model
when the provider supplies none.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
