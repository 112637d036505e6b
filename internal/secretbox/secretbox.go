// Package secretbox encrypts individual settings values for storage using
// NaCl secretbox with a key derived from site-local secret material.
package secretbox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// Box encrypts and decrypts single strings. The zero Box (no key material)
// is valid but every operation returns the empty-string failure sentinel.
type Box struct {
	key    [keySize]byte
	hasKey bool
}

// New derives the encryption key by hashing the primary secret material, or
// the fallback salt when the primary material is empty. With neither, the
// returned Box is unusable and all operations fail with "".
func New(material, fallbackSalt string) *Box {
	if material == "" {
		material = fallbackSalt
	}
	if material == "" {
		return &Box{}
	}
	return &Box{key: sha256.Sum256([]byte(material)), hasKey: true}
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext). Returns "" when plaintext is empty, no key is
// configured, or the nonce cannot be generated. Never panics to the caller.
func (b *Box) Encrypt(plaintext string) string {
	if plaintext == "" || !b.hasKey {
		return ""
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return ""
	}

	// Seal appends the ciphertext to the nonce: nonce || ciphertext || tag.
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed)
}

// Decrypt reverses Encrypt. Returns "" on empty input, missing key,
// malformed base64, input shorter than the nonce, or authentication failure.
func (b *Box) Decrypt(encoded string) string {
	if encoded == "" || !b.hasKey {
		return ""
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	if len(data) < nonceSize {
		return ""
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])

	plaintext, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &b.key)
	if !ok {
		return ""
	}
	return string(plaintext)
}

// LoadOrCreateSalt returns the site-local fallback salt stored at path,
// generating and persisting a random one on first use. The salt is only the
// secondary key source; a configured secret key takes priority.
func LoadOrCreateSalt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil && len(data) > 0 {
		return string(data), nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("read salt file: %w", err)
	}

	raw := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := base64.StdEncoding.EncodeToString(raw)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create salt dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(salt), 0o600); err != nil {
		return "", fmt.Errorf("write salt file: %w", err)
	}
	return salt, nil
}
