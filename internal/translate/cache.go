package translate

import (
	"context"
	"fmt"
	"sync"

	"github.com/airenas/go-app/pkg/goapp"
)

// Store keeps resolved translations beyond the process cache
type Store interface {
	Get(ctx context.Context, lang, word string) (string, bool, error)
	Save(ctx context.Context, lang, word, text string) error
}

type key struct {
	lang string
	word string
}

type entry struct {
	status Status
	text   string
	done   chan struct{}
}

var closedCh = func() chan struct{} {
	res := make(chan struct{})
	close(res)
	return res
}()

// Result of a lookup.
// A pending result completes when Done is closed; Wait returns the final value.
type Result struct {
	Lang   string `json:"lang,omitempty"`
	Word   string `json:"word,omitempty"`
	Status Status `json:"status"`
	Text   string `json:"text,omitempty"`

	e *entry
}

// Done is closed when the result is final
func (r *Result) Done() <-chan struct{} {
	if r.e == nil {
		return closedCh
	}
	return r.e.done
}

// Wait blocks until the result is final or ctx is done.
// On ctx end it returns the pending result unchanged.
func (r *Result) Wait(ctx context.Context) *Result {
	if r.e == nil || r.Status != Pending {
		return r
	}
	select {
	case <-r.e.done:
	case <-ctx.Done():
		return r
	}
	// entry fields are not written after done is closed
	return &Result{Lang: r.Lang, Word: r.Word, Status: r.e.status, Text: r.e.text, e: r.e}
}

// Cache maps (lang, normalized word) to a translation.
// At most one resolution is started per key, terminal entries are never re-queried.
type Cache struct {
	ctx      context.Context
	resolver Resolver
	store    Store

	lock    sync.Mutex
	entries map[key]*entry
}

// NewCache creates the cache. ctx bounds all background resolutions, store may be nil.
func NewCache(ctx context.Context, resolver Resolver, store Store) (*Cache, error) {
	if resolver == nil {
		return nil, fmt.Errorf("no resolver")
	}
	goapp.Log.Info().Bool("store", store != nil).Msg("Translation cache")
	return &Cache{ctx: ctx, resolver: resolver, store: store, entries: map[key]*entry{}}, nil
}

// Lookup returns the cached value or starts one resolution and returns a pending result
func (c *Cache) Lookup(lang, rawWord string) *Result {
	if IsEnglish(lang) {
		return &Result{Status: NotApplicable}
	}
	word := Normalize(rawWord)
	if !Applicable(word) {
		return &Result{Status: NotApplicable}
	}
	k := key{lang: LangCode(lang), word: word}

	c.lock.Lock()
	defer c.lock.Unlock()
	if e, ok := c.entries[k]; ok {
		return &Result{Lang: k.lang, Word: k.word, Status: e.status, Text: e.text, e: e}
	}
	e := &entry{status: Pending, text: PendingText, done: make(chan struct{})}
	c.entries[k] = e
	goapp.Log.Debug().Str("lang", k.lang).Str("word", k.word).Msg("resolving")
	go c.resolve(k, e)
	return &Result{Lang: k.lang, Word: k.word, Status: e.status, Text: e.text, e: e}
}

func (c *Cache) resolve(k key, e *entry) {
	text, ok := "", false
	defer func() {
		if r := recover(); r != nil {
			goapp.Log.Error().Interface("panic", r).Str("word", k.word).Msg("resolve")
			ok = false
		}
		c.finish(e, text, ok)
	}()

	if c.store != nil {
		st, found, err := c.store.Get(c.ctx, k.lang, k.word)
		if err != nil {
			goapp.Log.Warn().Err(err).Str("word", k.word).Msg("store get")
		} else if found {
			text, ok = st, true
			return
		}
	}
	text, ok = c.resolver.Resolve(c.ctx, k.lang, k.word)
	if ok && c.store != nil {
		if err := c.store.Save(c.ctx, k.lang, k.word, text); err != nil {
			goapp.Log.Warn().Err(err).Str("word", k.word).Msg("store save")
		}
	}
}

func (c *Cache) finish(e *entry, text string, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if ok {
		e.status, e.text = Resolved, text
	} else {
		e.status, e.text = Failed, UnavailableText
	}
	close(e.done)
}

// Snapshot returns resolved translations of a language keyed by normalized word
func (c *Cache) Snapshot(lang string) map[string]string {
	l := LangCode(lang)
	res := map[string]string{}
	c.lock.Lock()
	defer c.lock.Unlock()
	for k, e := range c.entries {
		if k.lang == l && e.status == Resolved {
			res[k.word] = e.text
		}
	}
	return res
}

// Len returns count of known keys
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}
