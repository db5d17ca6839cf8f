package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Provenance tells where word timings come from
type Provenance string

const (
	// ProvenanceModel - timestamps produced by the ASR model
	ProvenanceModel Provenance = "model"
	// ProvenanceInterpolated - timestamps derived by dividing a segment evenly
	ProvenanceInterpolated Provenance = "interpolated"
)

// Document is the transcript produced by the ASR collaborator
type Document struct {
	Text                string    `json:"text,omitempty"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability,omitempty"`
	Duration            float64   `json:"duration,omitempty"`
	Segments            []Segment `json:"segments"`
}

// Segment is a contiguous span of transcribed speech
type Segment struct {
	ID           int          `json:"id,omitempty"`
	Text         string       `json:"text"`
	Start        float64      `json:"start"`
	End          float64      `json:"end"`
	AvgLogprob   float64      `json:"avg_logprob,omitempty"`
	NoSpeechProb float64      `json:"no_speech_prob,omitempty"`
	Words        []WordTiming `json:"words,omitempty"`
}

// WordTiming is a word as it comes in the transcript file
type WordTiming struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability,omitempty"`
}

// Word is the finest timed unit used for highlighting
type Word struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Start        float64    `json:"start"`
	End          float64    `json:"end"`
	SegmentIndex int        `json:"segment"`
	WordIndex    int        `json:"word"`
	Provenance   Provenance `json:"provenance"`
}

// LoadDocument parses transcript json
func LoadDocument(r io.Reader) (*Document, error) {
	res := &Document{}
	if err := json.NewDecoder(r).Decode(res); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return res, nil
}

// LoadDocumentFile reads transcript json from file
func LoadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return LoadDocument(f)
}

// WordID returns a stable word identifier
func WordID(segment, word int) string {
	return fmt.Sprintf("w-%d-%d", segment, word)
}

// Words flattens all segments into words in document order.
// Segments without word timestamps get evenly interpolated words.
func (d *Document) Words() []Word {
	if d == nil {
		return nil
	}
	var res []Word
	for si, s := range d.Segments {
		if len(s.Words) > 0 {
			for wi, w := range s.Words {
				res = append(res, Word{
					ID:           WordID(si, wi),
					Text:         strings.TrimSpace(w.Word),
					Start:        w.Start,
					End:          w.End,
					SegmentIndex: si,
					WordIndex:    wi,
					Provenance:   ProvenanceModel,
				})
			}
			continue
		}
		res = append(res, interpolate(si, s)...)
	}
	return res
}

func interpolate(si int, s Segment) []Word {
	tokens := strings.Fields(s.Text)
	if len(tokens) == 0 {
		return nil
	}
	step := (s.End - s.Start) / float64(len(tokens))
	if step < 0 {
		step = 0
	}
	res := make([]Word, 0, len(tokens))
	for wi, t := range tokens {
		res = append(res, Word{
			ID:           WordID(si, wi),
			Text:         t,
			Start:        s.Start + float64(wi)*step,
			End:          s.Start + float64(wi+1)*step,
			SegmentIndex: si,
			WordIndex:    wi,
			Provenance:   ProvenanceInterpolated,
		})
	}
	return res
}

// Derived reports whether timings are an approximation
func (w Word) Derived() bool {
	return w.Provenance == ProvenanceInterpolated
}

// TotalDuration returns the audio duration known from the transcript
func (d *Document) TotalDuration() float64 {
	if d == nil {
		return 0
	}
	res := d.Duration
	if l := len(d.Segments); l > 0 && d.Segments[l-1].End > res {
		res = d.Segments[l-1].End
	}
	return res
}
