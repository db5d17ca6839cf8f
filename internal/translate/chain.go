package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/transcript-player/internal/utils"
	"golang.org/x/time/rate"
)

// Provider is a remote translation service.
// It translates a normalized word from lang to english.
type Provider interface {
	Name() string
	Translate(ctx context.Context, lang, word string) (string, error)
}

// Resolver resolves a word, ok is false on failure
type Resolver interface {
	Resolve(ctx context.Context, lang, word string) (string, bool)
}

// Chain tries providers in order until one succeeds
type Chain struct {
	providers []Provider
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewChain creates an ordered provider chain.
// rps <= 0 disables pacing of provider calls.
func NewChain(timeout time.Duration, rps float64, providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers")
	}
	res := &Chain{providers: providers, timeout: timeout, limiter: rate.NewLimiter(rate.Inf, 0)}
	if rps > 0 {
		res.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if res.timeout <= 0 {
		res.timeout = 5 * time.Second
	}
	var names []string
	for _, p := range providers {
		names = append(names, p.Name())
	}
	goapp.Log.Info().Str("providers", strings.Join(names, ",")).Str("timeout", res.timeout.String()).
		Float64("rps", rps).Msg("Provider chain")
	return res, nil
}

// Resolve implements Resolver. It never returns a provider error.
func (c *Chain) Resolve(ctx context.Context, lang, word string) (string, bool) {
	defer utils.MeasureTime("chain", time.Now())
	for i, p := range c.providers {
		res, err := c.call(ctx, p, lang, word)
		if err == nil {
			goapp.Log.Debug().Str("provider", p.Name()).Str("word", word).Str("res", res).Msg("resolved")
			return res, true
		}
		goapp.Log.Warn().Err(err).Int("provider", i).Str("name", p.Name()).Str("lang", lang).Str("word", word).Msg("no translation")
		if ctx.Err() != nil {
			break
		}
	}
	return "", false
}

func (c *Chain) call(ctx context.Context, p Provider, lang, word string) (res string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()

	res, err = p.Translate(ctx, lang, word)
	if err != nil {
		return "", err
	}
	res = strings.TrimSpace(res)
	if res == "" {
		return "", fmt.Errorf("empty translation")
	}
	return res, nil
}

const (
	// DefaultGoogleURL of the primary provider
	DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"
	// DefaultMyMemoryURL of the fallback provider
	DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"
)

// ChainOptions configures the default provider chain
type ChainOptions struct {
	GoogleURL   string
	MyMemoryURL string
	Timeout     time.Duration
	RPS         float64
}

// NewDefaultChain creates the google -> mymemory chain
func NewDefaultChain(o ChainOptions) (*Chain, error) {
	g, err := NewGoogle(o.GoogleURL)
	if err != nil {
		return nil, fmt.Errorf("init google: %w", err)
	}
	m, err := NewMyMemory(o.MyMemoryURL)
	if err != nil {
		return nil, fmt.Errorf("init mymemory: %w", err)
	}
	return NewChain(o.Timeout, o.RPS, g, m)
}
