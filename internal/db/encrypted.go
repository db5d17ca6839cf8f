package db

import (
	"context"
	"fmt"

	"github.com/airenas/transcript-player/internal/secure"
)

// EncryptedStore seals translations before they reach the wrapped store
type EncryptedStore struct {
	next    Store
	crypter *secure.Crypter
}

// NewEncryptedStore wraps next, key must be at least 32 bytes
func NewEncryptedStore(next Store, key string) (*EncryptedStore, error) {
	c, err := secure.NewCrypter(key)
	if err != nil {
		return nil, fmt.Errorf("create crypter: %w", err)
	}
	return &EncryptedStore{next: next, crypter: c}, nil
}

// Get implements translate.Store.
// A value that can't be opened is returned as an error, the cache resolves the word again.
func (s *EncryptedStore) Get(ctx context.Context, lang, word string) (string, bool, error) {
	sealed, ok, err := s.next.Get(ctx, lang, word)
	if err != nil || !ok {
		return "", false, err
	}
	res, err := s.crypter.Open(sealed, key(lang, word))
	if err != nil {
		return "", false, fmt.Errorf("decrypt: %w", err)
	}
	return res, true, nil
}

// Save implements translate.Store
func (s *EncryptedStore) Save(ctx context.Context, lang, word, text string) error {
	sealed, err := s.crypter.Seal(text, key(lang, word))
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	return s.next.Save(ctx, lang, word, sealed)
}

func (s *EncryptedStore) Close() error {
	return s.next.Close()
}
