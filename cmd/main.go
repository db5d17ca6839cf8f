package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/transcript-player/internal/artifact"
	"github.com/airenas/transcript-player/internal/db"
	"github.com/airenas/transcript-player/internal/domain"
	"github.com/airenas/transcript-player/internal/service"
	"github.com/airenas/transcript-player/internal/timeline"
	"github.com/airenas/transcript-player/internal/translate"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/color"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		goapp.Log.Warn().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	cfg.SetDefault("port", 8000)
	cfg.SetDefault("player.autoScroll", true)
	cfg.SetDefault("translate.google.url", translate.DefaultGoogleURL)
	cfg.SetDefault("translate.mymemory.url", translate.DefaultMyMemoryURL)
	cfg.SetDefault("translate.timeout", "5s")
	cfg.SetDefault("translate.rps", 5)
	cfg.SetDefault("cache.store", "memory")
	cfg.SetDefault("cache.sqlite.path", "translations.db")
	cfg.SetDefault("cache.ttl", "168h")
	cfg.SetDefault("precache.batch", 5)
	cfg.SetDefault("precache.delay", "200ms")
	cfg.SetDefault("precache.startDelay", "1s")

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	doc, err := domain.LoadDocumentFile(cfg.GetString("transcript.file"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load transcript")
	}
	audio, err := artifact.LoadAudio(cfg.GetString("audio.file"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load audio")
	}
	lang := cfg.GetString("transcript.lang")
	if lang == "" {
		lang = doc.Language
	}

	store, err := db.NewStore(db.Options{
		Kind:          cfg.GetString("cache.store"),
		RedisURL:      cfg.GetString("cache.redis.url"),
		SQLitePath:    cfg.GetString("cache.sqlite.path"),
		TTL:           cfg.GetDuration("cache.ttl"),
		EncryptionKey: cfg.GetString("cache.encryptionKey"),
	})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init store")
	}
	if store != nil {
		defer store.Close()
	}

	chain, err := translate.NewDefaultChain(translate.ChainOptions{
		GoogleURL:   cfg.GetString("translate.google.url"),
		MyMemoryURL: cfg.GetString("translate.mymemory.url"),
		Timeout:     cfg.GetDuration("translate.timeout"),
		RPS:         cfg.GetFloat64("translate.rps"),
	})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init providers")
	}
	cache, err := translate.NewCache(ctx, chain, store)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init cache")
	}
	precacher := translate.NewPrecacher(cache, cfg.GetInt("precache.batch"), cfg.GetDuration("precache.delay"),
		cfg.GetDuration("precache.startDelay"))
	precacher.Start(ctx, doc, lang)

	data := &service.Data{}
	data.Ctx = ctx
	data.Port = cfg.GetInt("port")
	data.Doc = doc
	data.Index = timeline.Build(doc)
	data.Audio = audio
	data.Lang = lang
	data.AutoScroll = cfg.GetBool("player.autoScroll")
	data.Translator = cache
	data.WaitTimeout = 2 * cfg.GetDuration("translate.timeout")

	doneCh, err := service.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}

	/////////////////////// Waiting for terminate
	waitCh := make(chan os.Signal, 2)
	signal.Notify(waitCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-waitCh:
		goapp.Log.Info().Msg("Got exit signal")
	case <-doneCh:
		goapp.Log.Info().Msg("Service exit")
	}
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout gracefull shutdown")
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner :=
		`
    TRANSCRIPT PLAYER v: %s
	
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/transcript-player"))
}
