// Package crypto provides encryption for sensitive data like API keys.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the size of the salt in bytes
	SaltSize = 16

	// NonceSize is the size of the nonce for AES-GCM
	NonceSize = 12

	// KeySize is the size of the derived key (AES-256)
	KeySize = 32

	// PBKDF2Iterations is the number of iterations for key derivation
	PBKDF2Iterations = 200000

	// MinPassphraseLen is the minimum accepted passphrase length
	MinPassphraseLen = 8
)

var (
	// ErrWeakPassphrase is returned when the passphrase is too short
	ErrWeakPassphrase = fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLen)

	// ErrDecryptionFailed is returned when decryption fails (wrong
	// passphrase or corrupted data)
	ErrDecryptionFailed = errors.New("decryption failed: wrong passphrase or corrupted data")

	// ErrInvalidData is returned when the encrypted blob is malformed
	ErrInvalidData = errors.New("invalid encrypted data format")
)

// ValidatePassphrase checks the passphrase against the minimum length.
func ValidatePassphrase(passphrase string) error {
	if len(passphrase) < MinPassphraseLen {
		return ErrWeakPassphrase
	}
	return nil
}

// deriveKey derives an AES key from a passphrase using PBKDF2.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// Encrypt encrypts plaintext using AES-256-GCM with a key derived from the
// passphrase. Returns a base64 string containing salt + nonce + ciphertext.
func Encrypt(plaintext, passphrase string) (string, error) {
	if err := ValidatePassphrase(passphrase); err != nil {
		return "", err
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	combined := make([]byte, 0, SaltSize+NonceSize+len(ciphertext))
	combined = append(combined, salt...)
	combined = append(combined, nonce...)
	combined = append(combined, ciphertext...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encoded, passphrase string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidData
	}
	if len(combined) < SaltSize+NonceSize+1 {
		return "", ErrInvalidData
	}

	salt := combined[:SaltSize]
	nonce := combined[SaltSize : SaltSize+NonceSize]
	ciphertext := combined[SaltSize+NonceSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
