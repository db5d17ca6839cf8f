package artifact

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/airenas/transcript-player/internal/timeline"
	"github.com/airenas/transcript-player/internal/translate"
)

//go:embed templates/page.html.tmpl
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/page.html.tmpl"))

// Page is everything the player page needs
type Page struct {
	Title    string
	Language string
	Index    *timeline.Index
	// Audio is embedded as data URI when AudioURL is empty
	Audio    *Audio
	AudioURL string
	// Translations is a snapshot keyed by normalized word
	Translations map[string]string
	AutoScroll   bool
	// WSPath enables live mode, the page then syncs over websocket
	WSPath string
	// Lookup enables in-page translation of words missing in Translations
	Lookup *Lookup
}

// Lookup configures the provider calls done by the page itself
type Lookup struct {
	GoogleURL   string
	MyMemoryURL string
	Timeout     time.Duration
}

type pageWord struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Derived bool    `json:"derived"`
}

type pageData struct {
	Language     string            `json:"language"`
	Duration     float64           `json:"duration"`
	Words        []pageWord        `json:"words"`
	Translations map[string]string `json:"translations"`
	AutoScroll   bool              `json:"autoScroll"`
	WSPath       string            `json:"wsPath,omitempty"`

	LangCode        string   `json:"langCode"`
	PendingText     string   `json:"pendingText"`
	UnavailableText string   `json:"unavailableText"`
	GoogleURL       string   `json:"googleURL,omitempty"`
	MyMemoryURL     string   `json:"myMemoryURL,omitempty"`
	TimeoutMs       int64    `json:"timeoutMs,omitempty"`
	RejectMarkers   []string `json:"rejectMarkers,omitempty"`
}

type pageView struct {
	Title    string
	Language string
	AudioSrc template.URL
	Words    []pageWord
	Data     pageData
}

// Generate renders the self-contained player page
func Generate(w io.Writer, p Page) error {
	if p.Index == nil {
		return fmt.Errorf("no timeline")
	}
	src := p.AudioURL
	if src == "" {
		if p.Audio == nil {
			return fmt.Errorf("no audio")
		}
		src = p.Audio.DataURI()
	}
	words := make([]pageWord, 0, p.Index.Len())
	for _, e := range p.Index.Entries() {
		words = append(words, pageWord{ID: e.ID, Text: e.Text, Start: e.Start, End: e.End, Derived: e.Derived()})
	}
	tr := p.Translations
	if tr == nil {
		tr = map[string]string{}
	}
	duration := p.Index.Duration()
	if p.Audio != nil && p.Audio.Duration > duration {
		duration = p.Audio.Duration
	}
	title := p.Title
	if title == "" {
		title = "Transcript"
	}
	v := pageView{
		Title:    title,
		Language: p.Language,
		// data URIs and local paths only, both produced here
		AudioSrc: template.URL(src),
		Words:    words,
		Data: pageData{Language: p.Language, Duration: duration, Words: words, Translations: tr,
			AutoScroll: p.AutoScroll, WSPath: p.WSPath, LangCode: translate.LangCode(p.Language),
			PendingText: translate.PendingText, UnavailableText: translate.UnavailableText},
	}
	if l := p.Lookup; l != nil && (l.GoogleURL != "" || l.MyMemoryURL != "") {
		v.Data.GoogleURL, v.Data.MyMemoryURL = l.GoogleURL, l.MyMemoryURL
		v.Data.TimeoutMs = l.Timeout.Milliseconds()
		v.Data.RejectMarkers = translate.RejectMarkers()
	}
	if err := pageTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
