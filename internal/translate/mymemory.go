package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
)

// quota and warning texts MyMemory returns as if they were translations
var rejectMarkers = []string{
	"MYMEMORY WARNING",
	"YOU USED ALL AVAILABLE FREE TRANSLATIONS",
	"QUERY LENGTH LIMIT EXCEEDED",
	"INVALID LANGUAGE PAIR",
	"PLEASE SELECT TWO DISTINCT LANGUAGES",
}

// MyMemory calls the MyMemory get endpoint
type MyMemory struct {
	httpclient *http.Client
	getURL     string
}

// NewMyMemory creates the secondary provider
func NewMyMemory(getURL string) (*MyMemory, error) {
	res := MyMemory{}
	if getURL == "" {
		return nil, fmt.Errorf("no getURL")
	}
	res.getURL = getURL
	res.httpclient = providerHTTPClient()
	goapp.Log.Info().Str("url", getURL).Msg("MyMemory")
	return &res, nil
}

// Name of the provider
func (sp *MyMemory) Name() string {
	return "mymemory"
}

// responseStatus comes as a number or as a string
type myMemoryResponse struct {
	ResponseStatus any `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate implements Provider
func (sp *MyMemory) Translate(ctx context.Context, lang, word string) (string, error) {
	u, err := url.Parse(sp.getURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", word)
	q.Set("langpair", LangCode(lang)+"|en")
	u.RawQuery = q.Encode()

	res := &myMemoryResponse{}
	if err := getJSON(ctx, sp.httpclient, u.String(), res); err != nil {
		return "", err
	}
	if st := fmt.Sprint(res.ResponseStatus); st != "200" {
		return "", fmt.Errorf("response status %s", st)
	}
	text := strings.TrimSpace(res.ResponseData.TranslatedText)
	if text == "" {
		return "", fmt.Errorf("no translated text")
	}
	if rejected(text) {
		return "", fmt.Errorf("service warning: %s", text)
	}
	return text, nil
}

// RejectMarkers returns the texts that turn a MyMemory answer into a failure
func RejectMarkers() []string {
	return append([]string(nil), rejectMarkers...)
}

func rejected(text string) bool {
	upper := strings.ToUpper(text)
	for _, m := range rejectMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}
