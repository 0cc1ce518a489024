// Package media probes audio containers for recording metadata.
package media

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// Duration reports the play time of an audio buffer. Containers this package
// cannot parse yield zero with no error: duration is display metadata, never
// worth failing a transcription over.
func Duration(data []byte, mimeType string) (time.Duration, error) {
	switch kindFor(mimeType) {
	case "wav":
		return wavDuration(data)
	case "mp3":
		return mp3Duration(data)
	case "flac":
		return flacDuration(data)
	default:
		return 0, nil
	}
}

// FileDuration reports the play time of an audio file, dispatching on the
// file extension.
func FileDuration(path string) (time.Duration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wavDuration(data)
	case ".mp3":
		return mp3Duration(data)
	case ".flac":
		return flacDuration(data)
	default:
		return 0, nil
	}
}

func kindFor(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/flac", "audio/x-flac":
		return "flac"
	default:
		return ""
	}
}

func wavDuration(data []byte) (time.Duration, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	dur, err := d.Duration()
	if err != nil {
		return 0, fmt.Errorf("read wav: %w", err)
	}
	return dur, nil
}

func mp3Duration(data []byte) (time.Duration, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("read mp3: %w", err)
	}
	// Length is decoded PCM bytes: 16-bit stereo, 4 bytes per sample.
	samples := d.Length() / 4
	if d.SampleRate() == 0 {
		return 0, nil
	}
	seconds := float64(samples) / float64(d.SampleRate())
	return time.Duration(seconds * float64(time.Second)), nil
}

func flacDuration(data []byte) (time.Duration, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("read flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info.SampleRate == 0 {
		return 0, nil
	}
	seconds := float64(info.NSamples) / float64(info.SampleRate)
	return time.Duration(seconds * float64(time.Second)), nil
}
