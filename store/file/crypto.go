package file

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

var (
	ErrInvalidKeySize = errors.New("file store: encryption key must be 32 bytes")
	ErrCiphertext     = errors.New("file store: ciphertext too short")
)

// secretBox seals/opens the on-disk payload with ChaCha20-Poly1305.
// Layout: nonce || ciphertext.
type secretBox struct {
	key  []byte
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

func (b *secretBox) init() error {
	if len(b.key) != chacha20poly1305.KeySize {
		return ErrInvalidKeySize
	}

	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return fmt.Errorf("file store: init cipher: %w", err)
	}
	b.aead = aead
	return nil
}

func (b *secretBox) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (b *secretBox) open(payload []byte) ([]byte, error) {
	nonceSize := b.aead.NonceSize()
	if len(payload) < nonceSize {
		return nil, ErrCiphertext
	}
	return b.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], nil)
}

// DeriveKey derives a 32-byte encryption key from a passphrase with
// scrypt. The salt must be stable per installation (and at least 8
// bytes) or previously written stores become unreadable.
func DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(salt) < 8 {
		return nil, errors.New("file store: salt must be at least 8 bytes")
	}
	return scrypt.Key(passphrase, salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
}
