package translate

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/airenas/transcript-player/internal/domain"
)

func testDoc(lang string) *domain.Document {
	return &domain.Document{Language: lang, Segments: []domain.Segment{
		{Text: "Hola mundo", Start: 0, End: 2, Words: []domain.WordTiming{
			{Word: "Hola", Start: 0, End: 1}, {Word: "mundo,", Start: 1, End: 2}}},
		{Text: "hola y adiós", Start: 2, End: 5},
		{Text: "¡Mundo!", Start: 5, End: 6, Words: []domain.WordTiming{{Word: "¡Mundo!", Start: 5, End: 6}}},
	}}
}

type testLooker struct {
	lock  sync.Mutex
	calls []string
}

func (l *testLooker) Lookup(lang, word string) *Result {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.calls = append(l.calls, word)
	return &Result{Status: Resolved}
}

func TestUniqueWords(t *testing.T) {
	got := UniqueWords(testDoc("es"))
	want := []string{"hola", "mundo", "adiós"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueWords() = %v, want %v", got, want)
	}
}

func TestPrecacher_Run(t *testing.T) {
	tests := []struct {
		name  string
		lang  string
		batch int
		want  int
	}{
		{name: "spanish", lang: "es", batch: 2, want: 3},
		{name: "default batch", lang: "es", batch: 0, want: 3},
		{name: "english", lang: "en", batch: 2, want: 0},
		{name: "no lang", lang: "", batch: 2, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &testLooker{}
			p := NewPrecacher(l, tt.batch, time.Millisecond, 0)
			if got := p.Run(context.Background(), testDoc(tt.lang), tt.lang); got != tt.want {
				t.Errorf("Run() = %d, want %d", got, tt.want)
			}
			if len(l.calls) != tt.want {
				t.Errorf("lookups = %v, want %d", l.calls, tt.want)
			}
		})
	}
}

func TestPrecacher_Run_ResolvesOnce(t *testing.T) {
	r := &testResolver{res: map[string]string{"hola": "hello", "mundo": "world", "adiós": "goodbye"}}
	c := newTestCache(t, r, nil)
	p := NewPrecacher(c, 2, 0, 0)
	if got := p.Run(context.Background(), testDoc("es"), "es"); got != 3 {
		t.Errorf("Run() = %d, want 3", got)
	}
	if r.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", r.calls.Load())
	}
	got := c.Lookup("es", "Mundo")
	if got.Status != Resolved || got.Text != "world" {
		t.Errorf("Lookup() = %+v", got)
	}
	p.Run(context.Background(), testDoc("es"), "es")
	if r.calls.Load() != 3 {
		t.Errorf("calls after rerun = %d, want 3", r.calls.Load())
	}
}

func TestPrecacher_Run_Canceled(t *testing.T) {
	l := &testLooker{}
	p := NewPrecacher(l, 1, time.Hour, 0)
	ctx, cf := context.WithCancel(context.Background())
	cf()
	if got := p.Run(ctx, testDoc("es"), "es"); got != 1 {
		t.Errorf("Run() = %d, want 1", got)
	}
}

func TestPrecacher_Start(t *testing.T) {
	l := &testLooker{}
	p := NewPrecacher(l, 5, 0, 10*time.Millisecond)
	select {
	case <-p.Start(context.Background(), testDoc("es"), "es"):
	case <-time.After(2 * time.Second):
		t.Fatal("precache did not finish")
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.calls) != 3 {
		t.Errorf("lookups = %v, want 3", l.calls)
	}
}

func TestPrecacher_Start_CanceledBeforeDelay(t *testing.T) {
	l := &testLooker{}
	p := NewPrecacher(l, 5, 0, time.Hour)
	ctx, cf := context.WithCancel(context.Background())
	done := p.Start(ctx, testDoc("es"), "es")
	cf()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("precache did not stop")
	}
	if len(l.calls) != 0 {
		t.Errorf("lookups = %v, want none", l.calls)
	}
}

type slowLooker struct {
	wait     time.Duration
	lock     sync.Mutex
	inflight int
	max      int
	starts   []time.Time
	ends     []time.Time
}

func (l *slowLooker) Lookup(lang, word string) *Result {
	l.lock.Lock()
	l.inflight++
	l.max = max(l.max, l.inflight)
	l.starts = append(l.starts, time.Now())
	l.lock.Unlock()
	e := &entry{status: Pending, done: make(chan struct{})}
	go func() {
		time.Sleep(l.wait)
		l.lock.Lock()
		l.inflight--
		l.ends = append(l.ends, time.Now())
		e.status, e.text = Resolved, word
		l.lock.Unlock()
		close(e.done)
	}()
	return &Result{Lang: lang, Word: word, Status: Pending, e: e}
}

func TestPrecacher_Run_Batches(t *testing.T) {
	l := &slowLooker{wait: 30 * time.Millisecond}
	delay := 100 * time.Millisecond
	p := NewPrecacher(l, 2, delay, 0)
	if got := p.Run(context.Background(), testDoc("es"), "es"); got != 3 {
		t.Fatalf("Run() = %d, want 3", got)
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.max != 2 {
		t.Errorf("max in flight = %d, want 2", l.max)
	}
	if len(l.starts) != 3 || len(l.ends) != 3 {
		t.Fatalf("starts/ends = %d/%d, want 3/3", len(l.starts), len(l.ends))
	}
	firstDone := l.ends[0]
	for _, e := range l.ends[:2] {
		if e.After(firstDone) {
			firstDone = e
		}
	}
	if gap := l.starts[2].Sub(firstDone); gap < delay {
		t.Errorf("second batch started %v after first settled, want >= %v", gap, delay)
	}
}
