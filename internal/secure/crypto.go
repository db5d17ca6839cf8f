package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Crypter seals values with AES-GCM.
// Associated data binds a value to its key, so a sealed value can't be moved to another key.
type Crypter struct {
	aead cipher.AEAD
}

// NewCrypter uses the first 32 bytes of key
func NewCrypter(key string) (*Crypter, error) {
	k := []byte(key)
	l := len(k)
	if l < 32 {
		return nil, fmt.Errorf("key length must be >= 32 bytes, got %d", l)
	}
	block, err := aes.NewCipher(k[:32])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Crypter{aead: aead}, nil
}

// Encrypt returns nonce + ciphertext
func (c *Crypter) Encrypt(data, ad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(data)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, data, ad), nil
}

// Decrypt accepts raw nonce + ciphertext
func (c *Crypter) Decrypt(data, ad []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return c.aead.Open(nil, nonce, ciphertext, ad)
}

// Seal encrypts a string into base64 text
func (c *Crypter) Seal(text, ad string) (string, error) {
	res, err := c.Encrypt([]byte(text), []byte(ad))
	if err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(res), nil
}

// Open reverses Seal
func (c *Crypter) Open(sealed, ad string) (string, error) {
	data, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	res, err := c.Decrypt(data, []byte(ad))
	if err != nil {
		return "", err
	}
	return string(res), nil
}
