package media

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes one second of 8 kHz mono silence and returns the path.
func writeTestWAV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           make([]int, 8000),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// The wav encoder pads the data chunk, so the decoded duration lands a few
// milliseconds over the written sample count. Assertions allow for that.
func durationNear(got, want time.Duration) bool {
	diff := got - want
	return diff > -10*time.Millisecond && diff < 10*time.Millisecond
}

func TestFileDurationWAV(t *testing.T) {
	path := writeTestWAV(t)

	dur, err := FileDuration(path)
	if err != nil {
		t.Fatal(err)
	}
	if !durationNear(dur, time.Second) {
		t.Errorf("duration = %v, want ~1s", dur)
	}
}

func TestDurationWAVBuffer(t *testing.T) {
	data, err := os.ReadFile(writeTestWAV(t))
	if err != nil {
		t.Fatal(err)
	}

	dur, err := Duration(data, "audio/wav")
	if err != nil {
		t.Fatal(err)
	}
	if !durationNear(dur, time.Second) {
		t.Errorf("duration = %v, want ~1s", dur)
	}
}

func TestDurationUnknownContainer(t *testing.T) {
	dur, err := Duration([]byte("not audio at all"), "audio/ogg")
	if err != nil {
		t.Fatal(err)
	}
	if dur != 0 {
		t.Errorf("unknown container should probe to zero, got %v", dur)
	}
}

func TestFileDurationMissing(t *testing.T) {
	if _, err := FileDuration(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMIMEForExt(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		expected string
	}{
		{name: "MP3", ext: ".mp3", expected: "audio/mpeg"},
		{name: "M4A", ext: ".m4a", expected: "audio/mp4"},
		{name: "MP4", ext: ".mp4", expected: "audio/mp4"},
		{name: "WAV", ext: ".wav", expected: "audio/wav"},
		{name: "FLAC", ext: ".flac", expected: "audio/flac"},
		{name: "Ogg", ext: ".ogg", expected: "audio/ogg"},
		{name: "WebM", ext: ".webm", expected: "audio/webm"},
		{name: "Uppercase", ext: ".MP3", expected: "audio/mpeg"},
		{name: "Unknown", ext: ".xyz", expected: "application/octet-stream"},
		{name: "Empty", ext: "", expected: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MIMEForExt(tt.ext); got != tt.expected {
				t.Errorf("MIMEForExt(%q) = %q, want %q", tt.ext, got, tt.expected)
			}
		})
	}
}
