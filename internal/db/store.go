package db

import (
	"fmt"
	"io"
	"time"

	"github.com/airenas/transcript-player/internal/translate"
)

// Store is a translation store that must be closed after use
type Store interface {
	translate.Store
	io.Closer
}

func key(lang, word string) string {
	return lang + ":" + word
}

// Options selects and configures a store
type Options struct {
	Kind       string
	RedisURL   string
	SQLitePath string
	TTL        time.Duration
	// EncryptionKey enables sealing of stored values when set
	EncryptionKey string
}

// NewStore creates a store by kind: memory, redis or sqlite.
// Kind "none" returns nil, the cache then works without persistence.
func NewStore(o Options) (Store, error) {
	res, err := newStore(o)
	if err != nil {
		return nil, err
	}
	if res == nil || o.EncryptionKey == "" {
		return res, nil
	}
	enc, err := NewEncryptedStore(res, o.EncryptionKey)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	return enc, nil
}

func newStore(o Options) (Store, error) {
	switch o.Kind {
	case "", "memory":
		return NewMemoryStore(o.TTL), nil
	case "none":
		return nil, nil
	case "redis":
		res, err := NewRedisStore(o.RedisURL, o.TTL)
		if err != nil {
			return nil, err
		}
		return res, nil
	case "sqlite":
		res, err := NewSQLiteStore(o.SQLitePath, o.TTL)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, fmt.Errorf("unknown store '%s'", o.Kind)
}
