package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/crypto"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage stored API keys",
}

var keysEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt the API keys in the config file",
	Long: `Encrypt the API keys stored in the config file with a passphrase.
Encrypted keys carry an enc: prefix and are decrypted at startup with
--passphrase or the VOXNOTES_PASSPHRASE environment variable.`,
	RunE: runKeysEncrypt,
}

func init() {
	keysCmd.AddCommand(keysEncryptCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysEncrypt(cmd *cobra.Command, args []string) error {
	if !config.Exists() {
		return fmt.Errorf("no config file found; run voxnotes once or create it first")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	plainASR := !strings.HasPrefix(cfg.ASR.APIKey, config.EncryptedKeyPrefix) && cfg.ASR.APIKey != ""
	plainGen := !strings.HasPrefix(cfg.Generation.APIKey, config.EncryptedKeyPrefix) && cfg.Generation.APIKey != ""
	if !plainASR && !plainGen {
		fmt.Println("No plain API keys in the config file; nothing to do.")
		return nil
	}

	passphrase, err := promptPassphrase()
	if err != nil {
		return err
	}

	if cfg.ASR.APIKey, err = config.EncryptKey(cfg.ASR.APIKey, passphrase); err != nil {
		return fmt.Errorf("encrypt ASR key: %w", err)
	}
	if cfg.Generation.APIKey, err = config.EncryptKey(cfg.Generation.APIKey, passphrase); err != nil {
		return fmt.Errorf("encrypt generation key: %w", err)
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println("API keys encrypted. Set VOXNOTES_PASSPHRASE or pass --passphrase to use them.")
	return nil
}

func promptPassphrase() (string, error) {
	fmt.Printf("Passphrase (min %d characters): ", crypto.MinPassphraseLen)
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}

	if err := crypto.ValidatePassphrase(string(first)); err != nil {
		return "", err
	}

	fmt.Print("Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}
