package api

import "github.com/airenas/transcript-player/internal/timeline"

const (
	// EventPosition client reports the playback position
	EventPosition = "POSITION"
	// EventHover client hovers a word
	EventHover = "HOVER"
	// EventLeave client leaves a hovered word
	EventLeave = "LEAVE"
	// EventState server sends the highlight change
	EventState = "STATE"
	// EventTranslation server sends a hover translation
	EventTranslation = "TRANSLATION"
	// EventError server reports a bad client message
	EventError = "ERROR"
)

// EventMsg is the incoming player message
type EventMsg struct {
	Event string  `json:"event"`
	Time  float64 `json:"time,omitempty"`
	ID    string  `json:"id,omitempty"`
	Word  string  `json:"word,omitempty"`
}

// StateMsg is sent for each position update
type StateMsg struct {
	Event string `json:"event"`
	*timeline.Change
}

// TranslationMsg is sent on hover, first immediately, then on completion if it was pending
type TranslationMsg struct {
	Event  string `json:"event"`
	ID     string `json:"id"`
	Word   string `json:"word"`
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
}

// ErrorMsg is sent on a bad message
type ErrorMsg struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// Transcript is the timeline response
type Transcript struct {
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Words    []timeline.Entry `json:"words"`
}

// Translation is the response of the translate endpoint
type Translation struct {
	Lang   string `json:"lang"`
	Word   string `json:"word"`
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
}
