package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/pipeline"
	"github.com/voxnotes/voxnotes/internal/server"
	"github.com/voxnotes/voxnotes/internal/store"
	"github.com/voxnotes/voxnotes/internal/version"
)

func main() {
	// Command-line flags
	port := flag.Int("port", 0, "HTTP listen port (default: 8080)")
	dataDir := flag.String("data-dir", "", "directory for uploaded recordings")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voxnotes-server %s\n", version.Version)
		return
	}

	// Load configuration
	cfg := config.LoadOrDefault()

	// Resolve port (flag > config > default)
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	// Resolve data directory (flag > config > default)
	dir := *dataDir
	if dir == "" {
		dir = cfg.Server.DataDir
	}
	if dir == "" {
		configDir, err := config.ConfigDir()
		if err != nil {
			log.Fatalf("Failed to resolve data directory: %v", err)
		}
		dir = filepath.Join(configDir, "recordings")
	}

	// Expand ~ in path
	if len(dir) >= 2 && dir[:2] == "~/" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, dir[2:])
	}

	pipe, err := pipeline.New(cfg, os.Getenv("VOXNOTES_PASSPHRASE"))
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	srv := server.NewServer(cfg, pipe, store.NewMemoryStore(), dir)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
