package media

import (
	"encoding/json"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPreparation, "preparation"},
		{StatusInProgress, "in_progress"},
		{StatusSuccessful, "successful"},
		{StatusFailure, "failure"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusMarshalJSON(t *testing.T) {
	data, err := json.Marshal(StatusInProgress)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"in_progress"` {
		t.Errorf("Marshal = %s, want %q", data, "in_progress")
	}
}

func TestStatusUnmarshalJSON(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte(`"successful"`), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if s != StatusSuccessful {
		t.Errorf("Unmarshal = %v, want StatusSuccessful", s)
	}

	if err := json.Unmarshal([]byte(`"melting"`), &s); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestStreamRecordReset(t *testing.T) {
	rec := &StreamRecord{
		ID:        1,
		AssetID:   2,
		FormatID:  3,
		Status:    StatusSuccessful,
		JobHandle: "abc-123",
		File:      "video/streams/out.mp4",
		Metadata:  Metadata{Bitrate: 1000000, Duration: 12.5, Size: 1024},
		Audio:     &AudioTrack{Codec: "aac", Bitrate: 128000, Channels: 2},
		Video:     &VideoTrack{Codec: "h264", Width: 640, Height: 360},
	}

	rec.Reset()

	if rec.Status != StatusPreparation {
		t.Errorf("Status = %v, want StatusPreparation", rec.Status)
	}
	if rec.JobHandle != "" {
		t.Errorf("JobHandle = %q, want empty", rec.JobHandle)
	}
	if rec.File != "" {
		t.Errorf("File = %q, want empty", rec.File)
	}
	if rec.Metadata != (Metadata{}) {
		t.Errorf("Metadata = %+v, want zero", rec.Metadata)
	}
	if rec.Audio != nil || rec.Video != nil {
		t.Error("expected track metadata to be cleared")
	}

	// Identity fields survive the reset.
	if rec.ID != 1 || rec.AssetID != 2 || rec.FormatID != 3 {
		t.Error("Reset must not touch identity fields")
	}
}

func TestStreamRecordResetIdempotent(t *testing.T) {
	rec := &StreamRecord{AssetID: 1, FormatID: 2}
	rec.Reset()
	rec.Reset()

	if rec.Status != StatusPreparation || rec.JobHandle != "" || rec.File != "" {
		t.Error("resetting a fresh record must be a no-op")
	}
}

func TestAssetResetMetadata(t *testing.T) {
	asset := &Asset{
		ID:       7,
		Title:    "clip",
		Kind:     KindVideo,
		File:     "video/clip.mp4",
		Metadata: Metadata{Bitrate: 2000000, Duration: 60, Size: 4096},
		Audio:    &AudioTrack{Codec: "aac", Channels: 2},
		Video:    &VideoTrack{Codec: "h264", Width: 1920, Height: 1080},
	}

	asset.ResetMetadata()

	if asset.Metadata != (Metadata{}) {
		t.Errorf("Metadata = %+v, want zero", asset.Metadata)
	}
	if asset.Audio != nil || asset.Video != nil {
		t.Error("expected track metadata to be cleared")
	}
	if asset.Title != "clip" || asset.File != "video/clip.mp4" {
		t.Error("ResetMetadata must not touch identity or file fields")
	}
}

func TestFormatResolution(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   string
	}{
		{"BothSet", 1920, 1080, "1920x1080"},
		{"WidthOnly", 1280, 0, "1280x"},
		{"HeightOnly", 0, 720, "x720"},
		{"Unset", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Format{VideoWidth: tt.width, VideoHeight: tt.height}
			if got := f.Resolution(); got != tt.want {
				t.Errorf("Resolution() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindValid(t *testing.T) {
	if !KindAudio.Valid() || !KindVideo.Valid() {
		t.Error("expected audio and video kinds to be valid")
	}
	if Kind("image").Valid() {
		t.Error("expected unknown kind to be invalid")
	}
}
