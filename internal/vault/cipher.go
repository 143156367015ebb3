package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"epd/internal/vault/interfaces"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// VaultCipher seals payloads with XChaCha20-Poly1305. The 24-byte random
// nonce is prepended to the ciphertext, so nonce reuse is a non-issue at
// the write rates of a local store.
type VaultCipher struct {
	aead cipher.AEAD
}

func NewVaultCipher(keyring *Keyring) (interfaces.CipherInterface, error) {
	aead, err := chacha20poly1305.NewX(keyring.Key())
	if err != nil {
		return nil, fmt.Errorf("init vault cipher: %w", err)
	}
	return &VaultCipher{aead: aead}, nil
}

func (c *VaultCipher) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *VaultCipher) Open(sealed []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(sealed) < ns {
		return nil, errors.New("sealed payload too short")
	}
	plain, err := c.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("open vault payload: %w", err)
	}
	return plain, nil
}
