package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/airenas/transcript-player/internal/domain"
)

// Format of an export
type Format string

const (
	// FormatText plain transcript text
	FormatText Format = "txt"
	// FormatJSON the transcript as json
	FormatJSON Format = "json"
	// FormatSRT SubRip subtitles
	FormatSRT Format = "srt"
	// FormatVTT WebVTT subtitles
	FormatVTT Format = "vtt"
)

// Formats lists supported formats
var Formats = []Format{FormatText, FormatJSON, FormatSRT, FormatVTT}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Formats {
		if k == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format '%s'", s)
}

// ContentType returns the mime type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	case FormatSRT:
		return "application/x-subrip; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Write renders doc in the format
func Write(w io.Writer, doc *domain.Document, f Format) error {
	switch f {
	case FormatText:
		return Text(w, doc)
	case FormatJSON:
		return JSON(w, doc)
	case FormatSRT:
		return SRT(w, doc)
	case FormatVTT:
		return VTT(w, doc)
	}
	return fmt.Errorf("unknown format '%s'", f)
}

// Text writes the transcript text, joined segment texts if the document has none
func Text(w io.Writer, doc *domain.Document) error {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		var parts []string
		for _, s := range doc.Segments {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, " ")
	}
	_, err := io.WriteString(w, text)
	return err
}

// JSON writes the indented document
func JSON(w io.Writer, doc *domain.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// SRT writes numbered subtitle blocks
func SRT(w io.Writer, doc *domain.Document) error {
	for i, s := range doc.Segments {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", i+1,
			Timestamp(s.Start, ","), Timestamp(s.End, ","), strings.TrimSpace(s.Text)); err != nil {
			return err
		}
	}
	return nil
}

// VTT writes WebVTT cues
func VTT(w io.Writer, doc *domain.Document) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, s := range doc.Segments {
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			Timestamp(s.Start, "."), Timestamp(s.End, "."), strings.TrimSpace(s.Text)); err != nil {
			return err
		}
	}
	return nil
}

// Timestamp formats seconds as HH:MM:SS<sep>mmm
func Timestamp(sec float64, sep string) string {
	ms := int64(math.Round(max(sec, 0) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", ms/3600000, ms/60000%60, ms/1000%60, sep, ms%1000)
}
