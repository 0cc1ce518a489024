package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/media"
	"github.com/voxnotes/voxnotes/internal/output"
	"github.com/voxnotes/voxnotes/internal/pipeline"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

var (
	transcribeURL        string
	transcribeOutput     string
	transcribeJSON       bool
	transcribeProvider   string
	transcribePassphrase string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [file]",
	Short: "Transcribe and enrich a recording",
	Long: `Transcribe a local audio file, or a URL with --url, and write the
enriched transcript as markdown (default: <input>.transcript.md).

Examples:
  voxnotes transcribe meeting.m4a
  voxnotes transcribe meeting.m4a -o meeting.md
  voxnotes transcribe --url https://example.com/call.mp3
  voxnotes transcribe meeting.wav --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranscribe,
}

func init() {
	transcribeCmd.Flags().StringVar(&transcribeURL, "url", "", "transcribe a fetchable audio URL instead of a file")
	transcribeCmd.Flags().StringVarP(&transcribeOutput, "output", "o", "", "output path (default: <input>.transcript.md)")
	transcribeCmd.Flags().BoolVar(&transcribeJSON, "json", false, "write the enriched record as JSON")
	transcribeCmd.Flags().StringVar(&transcribeProvider, "provider", "", "override the configured ASR provider (deepgram, openai)")
	transcribeCmd.Flags().StringVar(&transcribePassphrase, "passphrase", "", "passphrase for encrypted API keys (or VOXNOTES_PASSPHRASE)")

	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	if transcribeURL == "" && len(args) == 0 {
		return fmt.Errorf("provide an input file or --url")
	}

	cfg := config.LoadOrDefault()
	if transcribeProvider != "" && transcribeProvider != cfg.ASR.Provider {
		cfg.ASR = config.ASRConfig{Provider: transcribeProvider}
		config.ApplyEnvKeys(cfg)
	}

	passphrase := transcribePassphrase
	if passphrase == "" {
		passphrase = os.Getenv("VOXNOTES_PASSPHRASE")
	}

	pipe, err := pipeline.New(cfg, passphrase)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *transcript.Record
	if transcribeURL != "" {
		fmt.Printf("Transcribing %s...\n", transcribeURL)
		rec, err = pipe.ProcessURL(ctx, transcribeURL)
	} else {
		inputPath := args[0]
		var audio []byte
		audio, err = os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		fmt.Printf("Transcribing %s...\n", filepath.Base(inputPath))
		rec, err = pipe.ProcessBuffer(ctx, audio, media.MIMEForExt(filepath.Ext(inputPath)))
	}
	if err != nil {
		return err
	}

	outPath := transcribeOutput
	if outPath == "" {
		base := "transcript"
		if len(args) > 0 {
			base = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
		}
		if transcribeJSON {
			outPath = base + ".transcript.json"
		} else {
			outPath = base + ".transcript.md"
		}
	}

	if transcribeJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return err
		}
	} else {
		if err := output.WriteMarkdown(outPath, rec); err != nil {
			return err
		}
	}

	printResult(rec, outPath)
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printResult(rec *transcript.Record, outPath string) {
	fmt.Println()
	fmt.Println(titleStyle.Render(rec.Title))
	fmt.Println(rec.Summary)
	if len(rec.Topics) > 0 {
		fmt.Printf("%s %s\n", labelStyle.Render("Topics:"), strings.Join(rec.Topics, ", "))
	}
	if len(rec.Intents) > 0 {
		fmt.Printf("%s %s\n", labelStyle.Render("Intents:"), strings.Join(rec.Intents, ", "))
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d utterances · saved to %s", len(rec.Utterances), outPath)))
}
