package pathoram

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor is the authenticated-encryption boundary every record
// crosses on every access (spec §1, §6). Implementations need not be
// deterministic — a fresh nonce per call is required for security —
// but must reject tampered or truncated ciphertext rather than panic.
//
// No associated data is used: a sealed record's bucket changes on
// every eviction it survives, so nothing about its current tree
// position is stable enough to authenticate against. The record's
// identifier and payload instead travel inside the ciphertext itself
// (see sealRecord/openRecord), which is what keeps a dummy
// indistinguishable from a real record without the key.
type Encryptor interface {
	// Encrypt seals plaintext. The returned bytes include the nonce
	// and authentication tag.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens a ciphertext produced by Encrypt.
	Decrypt(ciphertext []byte) ([]byte, error)

	// Overhead returns the number of extra bytes (nonce + tag) added
	// by Encrypt.
	Overhead() int
}

// AESGCMEncryptor provides AES-256-GCM encryption with random nonces,
// the default AEAD primitive.
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

const (
	aesKeySize   = 32 // AES-256
	aesNonceSize = 12 // standard GCM nonce size
)

// NewAESGCMEncryptor creates an AES-GCM encryptor from a 32-byte key.
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != aesKeySize {
		return nil, fmt.Errorf("pathoram: AES-256 key must be %d bytes, got %d", aesKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("pathoram: create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("pathoram: create GCM: %w", err)
	}

	return &AESGCMEncryptor{aead: aead}, nil
}

// Encrypt seals plaintext. Output format: nonce || ciphertext || tag.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aesNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, ErrCryptoError
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext in the nonce || ciphertext || tag format.
func (e *AESGCMEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < aesNonceSize+e.aead.Overhead() {
		return nil, ErrCryptoError
	}
	nonce := ciphertext[:aesNonceSize]
	ct := ciphertext[aesNonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrCryptoError
	}
	return plaintext, nil
}

// Overhead returns nonce size + GCM tag size.
func (e *AESGCMEncryptor) Overhead() int {
	return aesNonceSize + e.aead.Overhead()
}

// ChaCha20Poly1305Encryptor is the second AEAD option the crypto
// boundary (spec §6) can be instantiated with, selected via
// Config.Cipher = "chacha20poly1305". It exercises
// golang.org/x/crypto's AEAD construction, distinct from the stdlib
// AES-GCM above, so the interface boundary is genuinely pluggable
// rather than hard-coded to one primitive.
type ChaCha20Poly1305Encryptor struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305Encryptor creates a ChaCha20-Poly1305 encryptor
// from a chacha20poly1305.KeySize-byte key.
func NewChaCha20Poly1305Encryptor(key []byte) (*ChaCha20Poly1305Encryptor, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("pathoram: create chacha20poly1305: %w", err)
	}
	return &ChaCha20Poly1305Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext. Output format: nonce || ciphertext || tag.
func (e *ChaCha20Poly1305Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, ErrCryptoError
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext in the nonce || ciphertext || tag format.
func (e *ChaCha20Poly1305Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < chacha20poly1305.NonceSize+e.aead.Overhead() {
		return nil, ErrCryptoError
	}
	nonce := ciphertext[:chacha20poly1305.NonceSize]
	ct := ciphertext[chacha20poly1305.NonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrCryptoError
	}
	return plaintext, nil
}

// Overhead returns nonce size + Poly1305 tag size.
func (e *ChaCha20Poly1305Encryptor) Overhead() int {
	return chacha20poly1305.NonceSize + e.aead.Overhead()
}

// NewEncryptor constructs the Encryptor named by cfg.Cipher from key.
// cfg must already be Config.Validate'd so Cipher is non-empty.
func NewEncryptor(cfg Config, key []byte) (Encryptor, error) {
	switch cfg.Cipher {
	case "chacha20poly1305":
		return NewChaCha20Poly1305Encryptor(key)
	case "aes256gcm", "":
		return NewAESGCMEncryptor(key)
	default:
		return nil, fmt.Errorf("pathoram: unknown cipher %q", cfg.Cipher)
	}
}

// KeySize returns the raw key length NewEncryptor expects for cfg's
// configured cipher.
func KeySize(cfg Config) int {
	if cfg.Cipher == "chacha20poly1305" {
		return chacha20poly1305.KeySize
	}
	return aesKeySize
}
