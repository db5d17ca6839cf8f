package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

// Google calls the public translate_a/single endpoint
type Google struct {
	httpclient *http.Client
	getURL     string
}

// NewGoogle creates the primary provider
func NewGoogle(getURL string) (*Google, error) {
	res := Google{}
	if getURL == "" {
		return nil, fmt.Errorf("no getURL")
	}
	res.getURL = getURL
	res.httpclient = providerHTTPClient()
	goapp.Log.Info().Str("url", getURL).Msg("Google")
	return &res, nil
}

// Name of the provider
func (sp *Google) Name() string {
	return "google"
}

// Translate implements Provider
func (sp *Google) Translate(ctx context.Context, lang, word string) (string, error) {
	u, err := url.Parse(sp.getURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", LangCode(lang))
	q.Set("tl", "en")
	q.Set("dt", "t")
	q.Set("q", word)
	u.RawQuery = q.Encode()

	var res []any
	if err := getJSON(ctx, sp.httpclient, u.String(), &res); err != nil {
		return "", err
	}
	return firstTranslated(res)
}

// firstTranslated extracts data[0][0][0] from the nested array response
func firstTranslated(data []any) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty response")
	}
	segs, ok := data[0].([]any)
	if !ok || len(segs) == 0 {
		return "", fmt.Errorf("no translated segments")
	}
	seg, ok := segs[0].([]any)
	if !ok || len(seg) == 0 {
		return "", fmt.Errorf("malformed segment")
	}
	res, ok := seg[0].(string)
	if !ok || res == "" {
		return "", fmt.Errorf("no translated text")
	}
	return res, nil
}

func getJSON(ctx context.Context, client *http.Client, getURL string, res any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1000))
		_ = resp.Body.Close()
	}()
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
	}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func providerHTTPClient() *http.Client {
	return &http.Client{Transport: newTransport()}
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 10
	res.MaxIdleConns = 5
	res.MaxIdleConnsPerHost = 5
	res.IdleConnTimeout = 90 * time.Second
	return res
}
