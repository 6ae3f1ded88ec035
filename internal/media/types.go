package media

import (
	"fmt"
	"strconv"
	"time"
)

// Kind distinguishes audio from video assets and formats. It is a
// closed set; the encoder dispatches on it rather than on runtime
// types.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindAudio || k == KindVideo
}

// Status is the conversion state of a StreamRecord.
type Status int

const (
	StatusPreparation Status = iota
	StatusInProgress
	StatusSuccessful
	StatusFailure
)

// MarshalJSON encodes the status as its string name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its string name.
func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"preparation"`:
		*s = StatusPreparation
	case `"in_progress"`:
		*s = StatusInProgress
	case `"successful"`:
		*s = StatusSuccessful
	case `"failure"`:
		*s = StatusFailure
	default:
		return fmt.Errorf("unknown status %s", data)
	}
	return nil
}

// String returns the status name used in logs and API responses.
func (s Status) String() string {
	switch s {
	case StatusPreparation:
		return "preparation"
	case StatusInProgress:
		return "in_progress"
	case StatusSuccessful:
		return "successful"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Metadata holds the file-level measurements the prober reports.
// The fields are either all populated (file present and probed) or
// all zero; they are never partially stale.
type Metadata struct {
	Bitrate  int64   `json:"bitrate"`
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
}

// AudioTrack describes the first audio track of a probed file.
type AudioTrack struct {
	Codec    string `json:"codec"`
	Bitrate  int64  `json:"bitrate,omitempty"` // 0 when the prober does not report one
	Channels int    `json:"channels"`
}

// VideoTrack describes the first video track of a probed file.
type VideoTrack struct {
	Codec   string `json:"codec"`
	Bitrate int64  `json:"bitrate,omitempty"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// Asset is an ingested source media file with measured technical
// metadata. File and Preview are storage-relative paths; Preview is
// only ever set for video assets.
type Asset struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Kind      Kind      `json:"kind"`
	File      string    `json:"file"`
	Preview   string    `json:"preview,omitempty"`
	DateAdded time.Time `json:"dateAdded"`

	Metadata
	Audio *AudioTrack `json:"audio,omitempty"`
	Video *VideoTrack `json:"video,omitempty"`
}

// ResetMetadata clears every measured field. The enumeration is
// deliberate: these are exactly the fields the prober owns.
func (a *Asset) ResetMetadata() {
	a.Metadata = Metadata{}
	a.Audio = nil
	a.Video = nil
}

// AspectMode controls how a video format handles source aspect ratio
// when both target dimensions are set.
type AspectMode string

const (
	// AspectScale scales directly to the target box.
	AspectScale AspectMode = "scale"
	// AspectScaleCrop scales to cover the target box preserving
	// aspect ratio, then center-crops to the exact dimensions.
	AspectScaleCrop AspectMode = "scale_crop"
)

// Format is an immutable named target encoding specification.
// Audio fields apply to both kinds (a video format carries an audio
// sub-specification); the Video* fields are only meaningful when
// Kind is KindVideo. Zero bitrates, dimensions and channel counts
// mean "unconstrained".
type Format struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Container string `json:"container"`

	AudioCodec       string `json:"audioCodec,omitempty"`
	AudioBitrate     int64  `json:"audioBitrate,omitempty"`
	AudioChannels    int    `json:"audioChannels,omitempty"`
	AudioCodecParams string `json:"audioCodecParams,omitempty"`

	VideoCodec       string     `json:"videoCodec,omitempty"`
	VideoBitrate     int64      `json:"videoBitrate,omitempty"`
	VideoWidth       int        `json:"videoWidth,omitempty"`
	VideoHeight      int        `json:"videoHeight,omitempty"`
	VideoCodecParams string     `json:"videoCodecParams,omitempty"`
	AspectMode       AspectMode `json:"aspectMode,omitempty"`
}

// Resolution returns "WxH" for display, or "" when neither dimension
// is constrained.
func (f *Format) Resolution() string {
	if f.VideoWidth == 0 && f.VideoHeight == 0 {
		return ""
	}
	w, h := "", ""
	if f.VideoWidth != 0 {
		w = strconv.Itoa(f.VideoWidth)
	}
	if f.VideoHeight != 0 {
		h = strconv.Itoa(f.VideoHeight)
	}
	return w + "x" + h
}

// FormatSet is a named group of formats of one kind, used to request
// "convert this asset to all of these".
type FormatSet struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Formats []Format `json:"formats"`
}

// StreamRecord is one (asset, format) conversion attempt and its
// lifecycle state. At most one record exists per pair; the database
// enforces the uniqueness.
type StreamRecord struct {
	ID       int64  `json:"id"`
	AssetID  int64  `json:"assetId"`
	FormatID int64  `json:"formatId"`
	Status   Status `json:"status"`

	// JobHandle identifies the in-flight conversion job; empty when
	// no job is running.
	JobHandle string `json:"-"`

	// File is the storage-relative output path, set only on success.
	File string `json:"file,omitempty"`

	Created time.Time `json:"created"`

	Metadata
	Audio *AudioTrack `json:"audio,omitempty"`
	Video *VideoTrack `json:"video,omitempty"`
}

// Reset returns the record to the preparation state, clearing the job
// handle, the output file reference and all measured metadata. Every
// field listed here is owned by the conversion lifecycle.
func (s *StreamRecord) Reset() {
	s.Status = StatusPreparation
	s.JobHandle = ""
	s.File = ""
	s.Metadata = Metadata{}
	s.Audio = nil
	s.Video = nil
}
