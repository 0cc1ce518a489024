package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/pipeline"
	"github.com/voxnotes/voxnotes/internal/server"
	"github.com/voxnotes/voxnotes/internal/store"
)

var (
	servePort       int
	serveDataDir    string
	servePassphrase string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription HTTP server",
	Long: `Start the voxnotes HTTP API. Recordings are accepted as uploads or
URLs, transcribed asynchronously by a worker pool, and served back with
their enriched transcripts.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config, then 8080)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "directory for uploaded recordings")
	serveCmd.Flags().StringVar(&servePassphrase, "passphrase", "", "passphrase for encrypted API keys (or VOXNOTES_PASSPHRASE)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault()

	// Flag > config > default.
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	dataDir := serveDataDir
	if dataDir == "" {
		dataDir = cfg.Server.DataDir
	}
	if dataDir == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return fmt.Errorf("resolve data directory: %w", err)
		}
		dataDir = filepath.Join(dir, "recordings")
	}

	passphrase := servePassphrase
	if passphrase == "" {
		passphrase = os.Getenv("VOXNOTES_PASSPHRASE")
	}

	pipe, err := pipeline.New(cfg, passphrase)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, pipe, store.NewMemoryStore(), dataDir)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
