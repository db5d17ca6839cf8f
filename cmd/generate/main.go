package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/transcript-player/internal/artifact"
	"github.com/airenas/transcript-player/internal/db"
	"github.com/airenas/transcript-player/internal/domain"
	"github.com/airenas/transcript-player/internal/export"
	"github.com/airenas/transcript-player/internal/timeline"
	"github.com/airenas/transcript-player/internal/translate"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type params struct {
	transcript string
	audio      string
	out        string
	lang       string
	title      string
	precache   bool
	pageLookup bool
	autoScroll bool
	exports    []string

	store      string
	redisURL   string
	sqlitePath string
	ttl        time.Duration
	cryptKey   string

	googleURL   string
	myMemoryURL string
	timeout     time.Duration
	rps         float64
	batch       int
	delay       time.Duration
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	p := &params{}
	res := &cobra.Command{
		Use:   "generate",
		Short: "Generate a self-contained transcript player page",
		Long: `Generate renders a single HTML file that plays the audio and highlights
the transcript words in sync. For a non-english transcript the hover
translations of all words are resolved up front and embedded (--precache), the
page looks up only the words missing in that snapshot (--page-lookup).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cf := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cf()
			return run(ctx, p)
		},
	}
	f := res.Flags()
	f.StringVarP(&p.transcript, "transcript", "t", "", "transcript json file")
	f.StringVarP(&p.audio, "audio", "a", "", "audio file")
	f.StringVarP(&p.out, "out", "o", "player.html", "output html file")
	f.StringVarP(&p.lang, "lang", "l", "", "transcript language, default from the transcript")
	f.StringVar(&p.title, "title", "", "page title")
	f.BoolVar(&p.precache, "precache", true, "resolve and embed translations of all words, skipped for english")
	f.BoolVar(&p.pageLookup, "page-lookup", true, "let the page translate words missing in the embedded snapshot")
	f.BoolVar(&p.autoScroll, "auto-scroll", true, "scroll the active word into view")
	f.StringSliceVar(&p.exports, "export", nil, "also write exports: "+formatNames())

	f.StringVar(&p.store, "store", "none", "translation store: none, memory, redis, sqlite")
	f.StringVar(&p.redisURL, "redis-url", os.Getenv("CACHE_REDIS_URL"), "redis url")
	f.StringVar(&p.sqlitePath, "sqlite-path", "translations.db", "sqlite file")
	f.DurationVar(&p.ttl, "ttl", 168*time.Hour, "stored translation ttl")
	f.StringVar(&p.cryptKey, "encryption-key", os.Getenv("CACHE_ENCRYPTIONKEY"), "seal stored translations with the key (>= 32 bytes)")

	f.StringVar(&p.googleURL, "google-url", translate.DefaultGoogleURL, "primary provider url")
	f.StringVar(&p.myMemoryURL, "mymemory-url", translate.DefaultMyMemoryURL, "fallback provider url")
	f.DurationVar(&p.timeout, "timeout", 5*time.Second, "provider call timeout")
	f.Float64Var(&p.rps, "rps", 5, "provider calls per second")
	f.IntVar(&p.batch, "batch", 5, "precache batch size")
	f.DurationVar(&p.delay, "delay", 200*time.Millisecond, "pause between precache batches")

	_ = res.MarkFlagRequired("transcript")
	_ = res.MarkFlagRequired("audio")
	return res
}

func formatNames() string {
	var res []string
	for _, f := range export.Formats {
		res = append(res, string(f))
	}
	return strings.Join(res, ",")
}

func run(ctx context.Context, p *params) error {
	formats, err := parseFormats(p.exports)
	if err != nil {
		return err
	}
	doc, err := domain.LoadDocumentFile(p.transcript)
	if err != nil {
		return err
	}
	audio, err := artifact.LoadAudio(p.audio)
	if err != nil {
		return err
	}
	lang := p.lang
	if lang == "" {
		lang = doc.Language
	}
	var translations map[string]string
	if p.precache {
		if translations, err = precache(ctx, p, doc, lang); err != nil {
			return err
		}
	}
	if err := writeFile(p.out, func(w *bufio.Writer) error {
		return artifact.Generate(w, artifact.Page{
			Title:        p.title,
			Language:     lang,
			Index:        timeline.Build(doc),
			Audio:        audio,
			Translations: translations,
			AutoScroll:   p.autoScroll,
			Lookup:       pageLookup(p, lang),
		})
	}); err != nil {
		return err
	}
	goapp.Log.Info().Str("file", p.out).Int("translations", len(translations)).Msg("page saved")

	base := strings.TrimSuffix(p.out, filepath.Ext(p.out))
	for _, f := range formats {
		path := fmt.Sprintf("%s.%s", base, f)
		if err := writeFile(path, func(w *bufio.Writer) error { return export.Write(w, doc, f) }); err != nil {
			return err
		}
		goapp.Log.Info().Str("file", path).Msg("export saved")
	}
	return nil
}

func pageLookup(p *params, lang string) *artifact.Lookup {
	if !p.pageLookup || translate.IsEnglish(lang) {
		return nil
	}
	return &artifact.Lookup{GoogleURL: p.googleURL, MyMemoryURL: p.myMemoryURL, Timeout: p.timeout}
}

func parseFormats(names []string) ([]export.Format, error) {
	var res []export.Format
	for _, n := range names {
		f, err := export.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, nil
}

func precache(ctx context.Context, p *params, doc *domain.Document, lang string) (map[string]string, error) {
	if translate.IsEnglish(lang) {
		goapp.Log.Info().Str("lang", lang).Msg("no translations for english")
		return nil, nil
	}
	store, err := db.NewStore(db.Options{Kind: p.store, RedisURL: p.redisURL, SQLitePath: p.sqlitePath, TTL: p.ttl,
		EncryptionKey: p.cryptKey})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}
	chain, err := translate.NewDefaultChain(translate.ChainOptions{GoogleURL: p.googleURL, MyMemoryURL: p.myMemoryURL,
		Timeout: p.timeout, RPS: p.rps})
	if err != nil {
		return nil, err
	}
	cache, err := translate.NewCache(ctx, chain, store)
	if err != nil {
		return nil, err
	}
	translate.NewPrecacher(cache, p.batch, p.delay, 0).Run(ctx, doc, lang)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("precache: %w", err)
	}
	return cache.Snapshot(lang), nil
}

func writeFile(path string, write func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
