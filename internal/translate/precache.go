package translate

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/transcript-player/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Looker is the lookup side of the cache
type Looker interface {
	Lookup(lang, rawWord string) *Result
}

// Precacher walks all unique transcript words once and warms the cache
type Precacher struct {
	cache      Looker
	batchSize  int
	delay      time.Duration
	startDelay time.Duration
}

// NewPrecacher creates a scheduler with the given batch size and pauses
func NewPrecacher(cache Looker, batchSize int, delay, startDelay time.Duration) *Precacher {
	if batchSize <= 0 {
		batchSize = 5
	}
	goapp.Log.Info().Int("batch", batchSize).Str("delay", delay.String()).Str("startDelay", startDelay.String()).Msg("Precacher")
	return &Precacher{cache: cache, batchSize: batchSize, delay: delay, startDelay: startDelay}
}

// UniqueWords returns normalized applicable words in first-seen order
func UniqueWords(doc *domain.Document) []string {
	seen := map[string]bool{}
	var res []string
	for _, w := range doc.Words() {
		n := Normalize(w.Text)
		if !Applicable(n) || seen[n] {
			continue
		}
		seen[n] = true
		res = append(res, n)
	}
	return res
}

// Start runs the scheduler in background after the start delay
func (p *Precacher) Start(ctx context.Context, doc *domain.Document, lang string) <-chan struct{} {
	res := make(chan struct{})
	go func() {
		defer close(res)
		if !sleep(ctx, p.startDelay) {
			return
		}
		p.Run(ctx, doc, lang)
	}()
	return res
}

// Run looks up all words batch by batch and returns the number of words visited.
// Failures are not reported, it is best-effort.
func (p *Precacher) Run(ctx context.Context, doc *domain.Document, lang string) int {
	if IsEnglish(lang) {
		goapp.Log.Info().Str("lang", lang).Msg("skip precache")
		return 0
	}
	words := UniqueWords(doc)
	goapp.Log.Info().Int("words", len(words)).Str("lang", lang).Msg("precache start")
	done := 0
	for from := 0; from < len(words); from += p.batchSize {
		to := min(from+p.batchSize, len(words))
		p.runBatch(ctx, lang, words[from:to])
		done = to
		if ctx.Err() != nil {
			break
		}
		if to < len(words) && !sleep(ctx, p.delay) {
			break
		}
	}
	goapp.Log.Info().Int("words", done).Msg("precache done")
	return done
}

func (p *Precacher) runBatch(ctx context.Context, lang string, words []string) {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range words {
		w := w
		g.Go(func() error {
			r := p.cache.Lookup(lang, w)
			select {
			case <-r.Done():
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		goapp.Log.Debug().Err(err).Msg("precache batch interrupted")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
