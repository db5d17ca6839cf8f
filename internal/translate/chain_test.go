package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type testProvider struct {
	name  string
	res   string
	err   error
	panic bool
	stuck bool
	calls atomic.Int32
}

func (p *testProvider) Name() string { return p.name }

func (p *testProvider) Translate(ctx context.Context, lang, word string) (string, error) {
	p.calls.Add(1)
	if p.panic {
		panic("provider")
	}
	if p.stuck {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.res, p.err
}

func TestNewChain(t *testing.T) {
	if _, err := NewChain(time.Second, 0); err == nil {
		t.Error("NewChain() succeeded unexpectedly")
	}
	if _, err := NewChain(time.Second, 0, &testProvider{name: "a"}); err != nil {
		t.Errorf("NewChain() failed: %v", err)
	}
}

func TestChain_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		a, b       *testProvider
		want       string
		timeout    time.Duration
		wantOK     bool
		wantBCalls int32
	}{
		{name: "first",
			a: &testProvider{name: "a", res: "hello"}, b: &testProvider{name: "b", res: "hi"},
			want: "hello", wantOK: true, wantBCalls: 0},
		{name: "fallback on error",
			a: &testProvider{name: "a", err: errors.New("down")}, b: &testProvider{name: "b", res: "hi"},
			want: "hi", wantOK: true, wantBCalls: 1},
		{name: "fallback on empty",
			a: &testProvider{name: "a", res: "  "}, b: &testProvider{name: "b", res: "hi"},
			want: "hi", wantOK: true, wantBCalls: 1},
		{name: "fallback on panic",
			a: &testProvider{name: "a", panic: true}, b: &testProvider{name: "b", res: "hi"},
			want: "hi", wantOK: true, wantBCalls: 1},
		{name: "fallback on timeout", timeout: 50 * time.Millisecond,
			a: &testProvider{name: "a", stuck: true}, b: &testProvider{name: "b", res: "hi"},
			want: "hi", wantOK: true, wantBCalls: 1},
		{name: "both stuck", timeout: 50 * time.Millisecond,
			a: &testProvider{name: "a", stuck: true}, b: &testProvider{name: "b", stuck: true},
			wantOK: false, wantBCalls: 1},
		{name: "both fail",
			a: &testProvider{name: "a", err: errors.New("down")}, b: &testProvider{name: "b", panic: true},
			wantOK: false, wantBCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			c, err := NewChain(timeout, 0, tt.a, tt.b)
			if err != nil {
				t.Fatalf("NewChain() failed: %v", err)
			}
			start := time.Now()
			got, ok := c.Resolve(context.Background(), "es", "hola")
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
			if d := time.Since(start); d > 2*time.Second {
				t.Errorf("Resolve() took %v", d)
			}
			if tt.a.calls.Load() != 1 {
				t.Errorf("a calls = %d, want 1", tt.a.calls.Load())
			}
			if tt.b.calls.Load() != tt.wantBCalls {
				t.Errorf("b calls = %d, want %d", tt.b.calls.Load(), tt.wantBCalls)
			}
		})
	}
}

func newTestServer(t *testing.T, body string, status int, calls *atomic.Int32, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogle_Translate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    string
		wantErr bool
	}{
		{name: "ok", body: `[[["hello","hola",null,null,10]],null,"es"]`, status: 200, want: "hello"},
		{name: "malformed", body: `{"error":"x"}`, status: 200, wantErr: true},
		{name: "no segments", body: `[null,null,"es"]`, status: 200, wantErr: true},
		{name: "empty text", body: `[[["","hola"]]]`, status: 200, wantErr: true},
		{name: "not json", body: `<html>`, status: 200, wantErr: true},
		{name: "http error", body: `quota`, status: 429, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := newTestServer(t, tt.body, tt.status, &calls, func(r *http.Request) {
				q := r.URL.Query()
				if q.Get("sl") != "es" || q.Get("tl") != "en" || q.Get("q") != "hola" || q.Get("client") != "gtx" {
					t.Errorf("bad query %v", q)
				}
			})
			p, err := NewGoogle(srv.URL)
			if err != nil {
				t.Fatalf("NewGoogle() failed: %v", err)
			}
			got, err := p.Translate(context.Background(), "es", "hola")
			if err != nil {
				if !tt.wantErr {
					t.Errorf("Translate() failed: %v", err)
				}
				return
			}
			if tt.wantErr {
				t.Fatal("Translate() succeeded unexpectedly")
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMyMemory_Translate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    string
		wantErr bool
	}{
		{name: "ok", body: `{"responseStatus":200,"responseData":{"translatedText":"hello"}}`, status: 200, want: "hello"},
		{name: "status string", body: `{"responseStatus":"200","responseData":{"translatedText":"hello"}}`, status: 200, want: "hello"},
		{name: "bad status", body: `{"responseStatus":403,"responseData":{"translatedText":"hello"}}`, status: 200, wantErr: true},
		{name: "quota", body: `{"responseStatus":200,"responseData":{"translatedText":"MYMEMORY WARNING: YOU USED ALL AVAILABLE FREE TRANSLATIONS FOR TODAY"}}`, status: 200, wantErr: true},
		{name: "empty", body: `{"responseStatus":200,"responseData":{"translatedText":""}}`, status: 200, wantErr: true},
		{name: "malformed", body: `[1,2]`, status: 200, wantErr: true},
		{name: "http error", body: ``, status: 500, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := newTestServer(t, tt.body, tt.status, &calls, func(r *http.Request) {
				if lp := r.URL.Query().Get("langpair"); lp != "es|en" {
					t.Errorf("langpair = %q", lp)
				}
			})
			p, err := NewMyMemory(srv.URL)
			if err != nil {
				t.Fatalf("NewMyMemory() failed: %v", err)
			}
			got, err := p.Translate(context.Background(), "spanish", "hola")
			if err != nil {
				if !tt.wantErr {
					t.Errorf("Translate() failed: %v", err)
				}
				return
			}
			if tt.wantErr {
				t.Fatal("Translate() succeeded unexpectedly")
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewProviders_NoURL(t *testing.T) {
	if _, err := NewGoogle(""); err == nil {
		t.Error("NewGoogle() succeeded unexpectedly")
	}
	if _, err := NewMyMemory(""); err == nil {
		t.Error("NewMyMemory() succeeded unexpectedly")
	}
}

func newHTTPCache(t *testing.T, aBody, bBody string, aCalls, bCalls *atomic.Int32) *Cache {
	t.Helper()
	a := newTestServer(t, aBody, http.StatusOK, aCalls, nil)
	b := newTestServer(t, bBody, http.StatusOK, bCalls, nil)
	g, err := NewGoogle(a.URL)
	if err != nil {
		t.Fatalf("NewGoogle() failed: %v", err)
	}
	m, err := NewMyMemory(b.URL)
	if err != nil {
		t.Fatalf("NewMyMemory() failed: %v", err)
	}
	ch, err := NewChain(time.Second, 0, g, m)
	if err != nil {
		t.Fatalf("NewChain() failed: %v", err)
	}
	return newTestCache(t, ch, nil)
}

func TestCache_FallbackToSecondProvider(t *testing.T) {
	var aCalls, bCalls atomic.Int32
	c := newHTTPCache(t, `{"broken":`, `{"responseStatus":200,"responseData":{"translatedText":"hola"}}`, &aCalls, &bCalls)
	got := wait(t, c.Lookup("es", "hello"))
	if got.Status != Resolved || got.Text != "hola" {
		t.Errorf("Lookup() = %+v, want hola", got)
	}
	if aCalls.Load() != 1 || bCalls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", aCalls.Load(), bCalls.Load())
	}
}

func TestCache_BothProvidersFail(t *testing.T) {
	var aCalls, bCalls atomic.Int32
	c := newHTTPCache(t, `[]`, `{"responseStatus":200,"responseData":{"translatedText":"MYMEMORY WARNING: quota"}}`, &aCalls, &bCalls)
	got := wait(t, c.Lookup("es", "hello"))
	if got.Status != Failed || got.Text != UnavailableText {
		t.Errorf("Lookup() = %+v, want failed", got)
	}
	again := c.Lookup("es", "hello")
	if again.Status != Failed || again.Text != UnavailableText {
		t.Errorf("second Lookup() = %+v", again)
	}
	if aCalls.Load() != 1 || bCalls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", aCalls.Load(), bCalls.Load())
	}
}

func TestCache_EnglishNoNetwork(t *testing.T) {
	var aCalls, bCalls atomic.Int32
	c := newHTTPCache(t, `[]`, `{}`, &aCalls, &bCalls)
	for _, l := range []string{"en", "english", ""} {
		if got := c.Lookup(l, "hello"); got.Status != NotApplicable {
			t.Errorf("Lookup(%q) = %+v", l, got)
		}
	}
	if aCalls.Load() != 0 || bCalls.Load() != 0 {
		t.Errorf("calls = %d/%d, want 0/0", aCalls.Load(), bCalls.Load())
	}
}

func TestNewDefaultChain(t *testing.T) {
	tests := []struct {
		name    string
		o       ChainOptions
		wantErr bool
	}{
		{name: "ok", o: ChainOptions{GoogleURL: DefaultGoogleURL, MyMemoryURL: DefaultMyMemoryURL}},
		{name: "no google", o: ChainOptions{MyMemoryURL: DefaultMyMemoryURL}, wantErr: true},
		{name: "no mymemory", o: ChainOptions{GoogleURL: DefaultGoogleURL}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDefaultChain(tt.o)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDefaultChain() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(got.providers) != 2 {
				t.Errorf("providers = %d", len(got.providers))
			}
		})
	}
}
