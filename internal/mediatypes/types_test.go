package mediatypes

import (
	"testing"

	"media-converter/internal/media"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		filename string
		want     media.Kind
		ok       bool
	}{
		{"song.mp3", media.KindAudio, true},
		{"song.MP3", media.KindAudio, true},
		{"recording.wav", media.KindAudio, true},
		{"album.flac", media.KindAudio, true},
		{"movie.mp4", media.KindVideo, true},
		{"movie.mkv", media.KindVideo, true},
		{"clip.webm", media.KindVideo, true},
		{"document.pdf", "", false},
		{"archive.zip", "", false},
		{"noextension", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := DetectKind(tt.filename)
			if got != tt.want || ok != tt.ok {
				t.Errorf("DetectKind(%q) = %v, %v; want %v, %v", tt.filename, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".mp3", "audio/mpeg"},
		{".MP3", "audio/mpeg"},
		{".mkv", "video/x-matroska"},
		{".png", "image/png"},
		{".xyz", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetMimeType(tt.ext); got != tt.want {
				t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestExtensionMapsAreDisjoint(t *testing.T) {
	for ext := range AudioExtensions {
		if VideoExtensions[ext] {
			t.Errorf("extension %s appears in both audio and video maps", ext)
		}
	}
}
