package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"media-converter/internal/media"
)

const sampleVideoOutput = `{
	"streams": [
		{"codec_type": "video", "codec_name": "h264", "bit_rate": "1800000", "width": 1280, "height": 720},
		{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 180},
		{"codec_type": "audio", "codec_name": "aac", "bit_rate": "128000", "channels": 2}
	],
	"format": {"bit_rate": "2000000", "size": "15000000", "duration": "60.041000"}
}`

const sampleAudioOutput = `{
	"streams": [
		{"codec_type": "video", "codec_name": "mjpeg", "width": 500, "height": 500},
		{"codec_type": "audio", "codec_name": "mp3", "bit_rate": "192000", "channels": 2}
	],
	"format": {"bit_rate": "195000", "size": "4800000", "duration": "199.8"}
}`

func TestParseOutputVideo(t *testing.T) {
	result, err := parseOutput([]byte(sampleVideoOutput), "")
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}

	if result.Bitrate != 2000000 {
		t.Errorf("Bitrate = %d, want 2000000", result.Bitrate)
	}
	if result.Size != 15000000 {
		t.Errorf("Size = %d, want 15000000", result.Size)
	}
	if result.Duration != 60.041 {
		t.Errorf("Duration = %f, want 60.041", result.Duration)
	}

	if result.Video == nil {
		t.Fatal("expected a video track")
	}
	// First video track wins; the mjpeg attachment is ignored.
	if result.Video.Codec != "h264" {
		t.Errorf("Video.Codec = %q, want h264", result.Video.Codec)
	}
	if result.Video.Width != 1280 || result.Video.Height != 720 {
		t.Errorf("Video dimensions = %dx%d, want 1280x720", result.Video.Width, result.Video.Height)
	}
	if result.Video.Bitrate != 1800000 {
		t.Errorf("Video.Bitrate = %d, want 1800000", result.Video.Bitrate)
	}

	if result.Audio == nil {
		t.Fatal("expected an audio track")
	}
	if result.Audio.Codec != "aac" || result.Audio.Channels != 2 {
		t.Errorf("Audio = %+v, want aac/2ch", result.Audio)
	}
}

func TestParseOutputRestrictedToAudio(t *testing.T) {
	// Audio files can carry embedded cover art as a video stream;
	// restricting to audio must drop it.
	result, err := parseOutput([]byte(sampleAudioOutput), media.KindAudio)
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}

	if result.Video != nil {
		t.Error("expected video track to be skipped under audio restriction")
	}
	if result.Audio == nil {
		t.Fatal("expected an audio track")
	}
	if result.Audio.Codec != "mp3" || result.Audio.Bitrate != 192000 {
		t.Errorf("Audio = %+v, want mp3 at 192000", result.Audio)
	}
}

func TestParseOutputMissingTrackBitrate(t *testing.T) {
	input := `{
		"streams": [{"codec_type": "audio", "codec_name": "flac", "channels": 2}],
		"format": {"bit_rate": "900000", "size": "1000", "duration": "1.0"}
	}`

	result, err := parseOutput([]byte(input), media.KindAudio)
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}
	if result.Audio == nil {
		t.Fatal("expected an audio track")
	}
	if result.Audio.Bitrate != 0 {
		t.Errorf("Audio.Bitrate = %d, want 0 (unknown)", result.Audio.Bitrate)
	}
}

func TestParseOutputErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"NotJSON", "ffprobe exploded"},
		{"NoFormatSection", `{"streams": []}`},
		{"MissingBitrate", `{"streams": [], "format": {"size": "1", "duration": "1.0"}}`},
		{"MissingSize", `{"streams": [], "format": {"bit_rate": "1", "duration": "1.0"}}`},
		{"MissingDuration", `{"streams": [], "format": {"bit_rate": "1", "size": "1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseOutput([]byte(tt.input), ""); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

// writeStubProber creates an executable shell script standing in for
// ffprobe, so the exec path can be exercised without the real tool.
func writeStubProber(t *testing.T, stdout, stderr string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "ffprobe-stub")
	script := "#!/bin/sh\n"
	if stderr != "" {
		script += "echo '" + stderr + "' >&2\n"
	}
	if stdout != "" {
		script += "cat <<'EOF'\n" + stdout + "\nEOF\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestProbeWithStub(t *testing.T) {
	prober := New(writeStubProber(t, sampleVideoOutput, ""))

	result, err := prober.Probe(context.Background(), "/media/in.mp4", "")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if result.Bitrate != 2000000 || result.Video == nil || result.Audio == nil {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestProbeErrorStreamIsFailure(t *testing.T) {
	// Stub exits 0 but writes to stderr; that must still be a probe
	// failure.
	prober := New(writeStubProber(t, sampleVideoOutput, "moov atom not found"))

	_, err := prober.Probe(context.Background(), "/media/broken.mp4", "")
	if err == nil {
		t.Fatal("expected probe error")
	}

	var probeErr *Error
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected *probe.Error, got %T", err)
	}
	if probeErr.Path != "/media/broken.mp4" {
		t.Errorf("Error.Path = %q", probeErr.Path)
	}
}

func TestProbeMissingExecutable(t *testing.T) {
	prober := New(filepath.Join(t.TempDir(), "no-such-ffprobe"))

	_, err := prober.Probe(context.Background(), "/media/in.mp4", "")
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
	var probeErr *Error
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected *probe.Error, got %T", err)
	}
}
