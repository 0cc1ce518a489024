// Package config handles the voxnotes configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voxnotes/voxnotes/internal/crypto"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "voxnotes"

	// EncryptedKeyPrefix tags API key values that are encrypted at rest.
	EncryptedKeyPrefix = "enc:"
)

// ConfigDir returns the standard config directory.
// Windows: %APPDATA%\voxnotes\
// macOS/Linux: ~/.config/voxnotes/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Language is the recognition language hint (e.g., "en-US")
	Language string `yaml:"language,omitempty"`

	// ASR selects and configures the speech-recognition provider
	ASR ASRConfig `yaml:"asr,omitempty"`

	// Generation selects and configures the text-generation provider used
	// for summary and title fallbacks
	Generation GenerationConfig `yaml:"generation,omitempty"`

	// Server configures `voxnotes serve`
	Server ServerConfig `yaml:"server,omitempty"`
}

// ASRConfig holds speech-recognition provider settings.
type ASRConfig struct {
	// Provider is "deepgram" or "openai"
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider default (nova-2 / whisper-1)
	Model string `yaml:"model,omitempty"`

	// APIKey is the vendor API key, possibly with the enc: prefix
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the vendor endpoint (tests, proxies)
	BaseURL string `yaml:"base_url,omitempty"`
}

// GenerationConfig holds text-generation provider settings.
type GenerationConfig struct {
	// Provider is "anthropic" or "openai"
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider default
	Model string `yaml:"model,omitempty"`

	// APIKey is the vendor API key, possibly with the enc: prefix
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the vendor endpoint
	BaseURL string `yaml:"base_url,omitempty"`
}

// ServerConfig holds HTTP server settings for `voxnotes serve`.
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// APIKey for authentication (optional; if set, API requests must
	// include the X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`

	// MaxConcurrent is the max number of concurrent transcription jobs
	// (default: 4)
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`

	// DataDir is where uploaded recordings are stored
	DataDir string `yaml:"data_dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Language: "en-US",
		ASR: ASRConfig{
			Provider: "deepgram",
		},
		Generation: GenerationConfig{
			Provider: "anthropic",
		},
		Server: ServerConfig{
			Port:          8080,
			MaxConcurrent: 4,
		},
	}
}

// Exists reports whether a config file is present.
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads and parses the config file, then applies env overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	ApplyEnvKeys(cfg)
	return cfg, nil
}

// LoadOrDefault loads the config file, falling back to defaults (with env
// overrides) when it is missing or unreadable.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
		ApplyEnvKeys(cfg)
	}
	return cfg
}

// Save writes the config file, creating the config directory if needed.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0600)
}

// ApplyEnvKeys fills missing API keys from the conventional vendor env vars.
// File values take precedence over the environment.
func ApplyEnvKeys(cfg *Config) {
	if cfg.ASR.APIKey == "" {
		switch cfg.ASR.Provider {
		case "deepgram":
			cfg.ASR.APIKey = os.Getenv("DEEPGRAM_API_KEY")
		case "openai":
			cfg.ASR.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.Generation.APIKey == "" {
		switch cfg.Generation.Provider {
		case "anthropic":
			cfg.Generation.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			cfg.Generation.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// ResolveKey returns the plain API key for a stored value. Values with the
// enc: prefix are decrypted with the passphrase; anything else is returned
// unchanged.
func ResolveKey(value, passphrase string) (string, error) {
	if !strings.HasPrefix(value, EncryptedKeyPrefix) {
		return value, nil
	}
	if passphrase == "" {
		return "", fmt.Errorf("API key is encrypted; a passphrase is required (set VOXNOTES_PASSPHRASE or use --passphrase)")
	}
	plain, err := crypto.Decrypt(strings.TrimPrefix(value, EncryptedKeyPrefix), passphrase)
	if err != nil {
		return "", fmt.Errorf("decrypt API key: %w", err)
	}
	return plain, nil
}

// EncryptKey encrypts a plain API key for storage, adding the enc: prefix.
// Already-encrypted values are returned unchanged.
func EncryptKey(value, passphrase string) (string, error) {
	if value == "" || strings.HasPrefix(value, EncryptedKeyPrefix) {
		return value, nil
	}
	blob, err := crypto.Encrypt(value, passphrase)
	if err != nil {
		return "", err
	}
	return EncryptedKeyPrefix + blob, nil
}
