package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/websocket"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/transcript-player/internal/api"
	"github.com/airenas/transcript-player/internal/artifact"
	"github.com/airenas/transcript-player/internal/domain"
	"github.com/airenas/transcript-player/internal/export"
	"github.com/airenas/transcript-player/internal/timeline"
	"github.com/airenas/transcript-player/internal/translate"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const wsPath = "/client/ws/player"

// Translator is the process wide translation cache
type Translator interface {
	Lookup(lang, rawWord string) *translate.Result
	Snapshot(lang string) map[string]string
}

// Data keeps data required for service work
type Data struct {
	Port       int
	Ctx        context.Context
	Doc        *domain.Document
	Index      *timeline.Index
	Audio      *artifact.Audio
	Lang       string
	AutoScroll bool
	Translator Translator
	// WaitTimeout bounds /translate?wait=1
	WaitTimeout time.Duration
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) (<-chan struct{}, error) {
	goapp.Log.Info().Msgf("Starting player service at %d", data.Port)
	if err := validate(data); err != nil {
		return nil, err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	res := make(chan struct{}, 1)
	go func() {
		defer close(res)
		if err := gracehttp.Serve(e.Server); err != nil {
			goapp.Log.Error().Err(err).Msg("can't start web server")
		}
		goapp.Log.Info().Msg("exit http routine")
	}()
	return res, nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("player", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	promMdlw.Use(e)

	e.GET("/live", live(data))
	e.GET("/", page(data))
	e.GET("/audio", audio(data))
	e.GET("/transcript", transcript(data))
	e.GET("/state", state(data))
	e.GET("/translate", translateWord(data))
	e.GET("/export/:format", exportDoc(data))
	e.GET(wsPath, subscribe(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

func page(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		var b bytes.Buffer
		err := artifact.Generate(&b, artifact.Page{
			Language:     data.Lang,
			Index:        data.Index,
			Audio:        data.Audio,
			AudioURL:     "/audio",
			Translations: data.Translator.Snapshot(data.Lang),
			AutoScroll:   data.AutoScroll,
			WSPath:       wsPath,
		})
		if err != nil {
			goapp.Log.Error().Err(err).Msg("page")
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.HTMLBlob(http.StatusOK, b.Bytes())
	}
}

func audio(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if data.Audio == nil {
			return echo.NewHTTPError(http.StatusNotFound, "no audio")
		}
		return c.Blob(http.StatusOK, data.Audio.Mime, data.Audio.Data)
	}
}

func transcript(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, &api.Transcript{Language: data.Lang, Duration: data.Index.Duration(),
			Words: data.Index.Entries()})
	}
}

func state(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		t, err := strconv.ParseFloat(c.QueryParam("t"), 64)
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong t")
		}
		return c.JSON(http.StatusOK, data.Index.StateAt(t))
	}
}

func translateWord(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		word := c.QueryParam("word")
		if word == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no word")
		}
		lang := c.QueryParam("lang")
		if lang == "" {
			lang = data.Lang
		}
		res := data.Translator.Lookup(lang, word)
		if c.QueryParam("wait") == "1" {
			ctx, cf := context.WithTimeout(c.Request().Context(), data.WaitTimeout)
			defer cf()
			res = res.Wait(ctx)
		}
		return c.JSON(http.StatusOK, &api.Translation{Lang: translate.LangCode(lang), Word: translate.Normalize(word),
			Status: res.Status.Name(), Text: res.Text})
	}
}

func exportDoc(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		f, err := export.ParseFormat(c.Param("format"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		var b bytes.Buffer
		if err := export.Write(&b, data.Doc, f); err != nil {
			goapp.Log.Error().Err(err).Msg("export")
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.Blob(http.StatusOK, f.ContentType(), b.Bytes())
	}
}

func validate(data *Data) error {
	if data.Doc == nil {
		return fmt.Errorf("no Doc")
	}
	if data.Index == nil {
		return fmt.Errorf("no Index")
	}
	if data.Translator == nil {
		return fmt.Errorf("no Translator")
	}
	if data.Ctx == nil {
		return fmt.Errorf("no Ctx")
	}
	if data.WaitTimeout <= 0 {
		data.WaitTimeout = 10 * time.Second
	}
	return nil
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func subscribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return err
		}
		defer ws.Close()

		lang := c.QueryParam("lang")
		if lang == "" {
			lang = data.Lang
		}
		return newSession(ws, data, lang).run(data.Ctx)
	}
}
