package artifact

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	pcmSampleRate = 16000
	pcmBitDepth   = 16
)

var mimeTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// Audio is the media embedded into the page
type Audio struct {
	Data     []byte
	Mime     string
	Duration float64
}

// LoadAudio reads an audio file. Raw 16kHz mono s16le (.pcm, .raw) is converted to wav.
func LoadAudio(path string) (*Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return NewAudio(filepath.Ext(path), data)
}

// NewAudio prepares audio bytes by file extension
func NewAudio(ext string, data []byte) (*Audio, error) {
	ext = strings.ToLower(ext)
	if ext == ".pcm" || ext == ".raw" {
		wd, err := PCMToWAV(data)
		if err != nil {
			return nil, fmt.Errorf("to wav: %w", err)
		}
		data, ext = wd, ".wav"
	}
	mime, ok := mimeTypes[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported audio '%s'", ext)
	}
	res := &Audio{Data: data, Mime: mime}
	if ext == ".wav" {
		d, err := WAVDuration(data)
		if err != nil {
			goapp.Log.Warn().Err(err).Msg("wav duration")
		}
		res.Duration = d
	}
	goapp.Log.Info().Str("mime", res.Mime).Int("bytes", len(data)).Float64("duration", res.Duration).Msg("Audio")
	return res, nil
}

// DataURI returns the audio as base64 data URI
func (a *Audio) DataURI() string {
	return "data:" + a.Mime + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// WAVDuration returns the duration of wav data in seconds
func WAVDuration(data []byte) (float64, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("invalid wav")
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	return d.Seconds(), nil
}

// PCMToWAV wraps 16kHz mono s16le samples into a wav container
func PCMToWAV(raw []byte) ([]byte, error) {
	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(raw[2*i]) | int16(raw[2*i+1])<<8)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  pcmSampleRate,
		},
		Data:           samples,
		SourceBitDepth: pcmBitDepth,
	}

	wavBuf := &memBuffer{}
	enc := wav.NewEncoder(wavBuf, pcmSampleRate, pcmBitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav: %w", err)
	}
	return wavBuf.buf, nil
}

// memBuffer is an in memory io.WriteSeeker, the wav encoder seeks back to patch headers
type memBuffer struct {
	buf []byte
	pos int64
}

func (m *memBuffer) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		newBuf := make([]byte, end)
		copy(newBuf, m.buf)
		m.buf = newBuf
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = m.pos + offset
	case io.SeekEnd:
		newPos = int64(len(m.buf)) + offset
	}
	if newPos < 0 {
		return 0, fmt.Errorf("negative position")
	}
	m.pos = newPos
	return newPos, nil
}
