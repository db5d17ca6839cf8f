package db

import (
	"context"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

type memItem struct {
	text    string
	expires time.Time
}

// MemoryStore keeps translations in process memory
type MemoryStore struct {
	data map[string]memItem
	ttl  time.Duration
	now  func() time.Time

	lock sync.RWMutex
}

// NewMemoryStore creates in memory store, ttl <= 0 keeps values forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	goapp.Log.Info().Str("ttl", ttl.String()).Msg("Memory store")
	return &MemoryStore{data: make(map[string]memItem), ttl: ttl, now: time.Now}
}

// Get implements translate.Store
func (am *MemoryStore) Get(ctx context.Context, lang, word string) (string, bool, error) {
	am.lock.RLock()
	defer am.lock.RUnlock()
	it, ok := am.data[key(lang, word)]
	if !ok {
		return "", false, nil
	}
	if !it.expires.IsZero() && am.now().After(it.expires) {
		return "", false, nil
	}
	return it.text, true, nil
}

// Save implements translate.Store
func (am *MemoryStore) Save(ctx context.Context, lang, word, text string) error {
	am.lock.Lock()
	defer am.lock.Unlock()
	it := memItem{text: text}
	if am.ttl > 0 {
		it.expires = am.now().Add(am.ttl)
	}
	am.data[key(lang, word)] = it
	return nil
}

// Close implements io.Closer
func (am *MemoryStore) Close() error {
	return nil
}
