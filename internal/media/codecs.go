package media

import (
	"encoding/json"
	"fmt"
	"os"
)

// CodecTable maps canonical codec and container names to the names
// the external transcoding tool understands (encoder library names
// and muxer names). Audio and video containers are looked up in
// separate tables because the same extension can map to different
// muxers.
type CodecTable struct {
	VideoCodecs     map[string]string `json:"videoCodecs"`
	AudioCodecs     map[string]string `json:"audioCodecs"`
	VideoContainers map[string]string `json:"videoContainers"`
	AudioContainers map[string]string `json:"audioContainers"`
}

// DefaultCodecTable returns the compiled-in mapping tables.
func DefaultCodecTable() CodecTable {
	return CodecTable{
		VideoCodecs: map[string]string{
			"h264":   "libx264",
			"vp8":    "libvpx",
			"mpeg4":  "mpeg4",
			"theora": "libtheora",
		},
		AudioCodecs: map[string]string{
			"mp3":       "libmp3lame",
			"aac":       "aac",
			"vorbis":    "libvorbis",
			"ac3":       "ac3",
			"pcm_f32le": "pcm_f32le",
			"pcm_s16be": "pcm_s16be",
		},
		VideoContainers: map[string]string{
			"mkv":  "matroska",
			"webm": "webm",
			"avi":  "avi",
			"flv":  "flv",
			"mp4":  "mp4",
			"ogg":  "ogg",
			"3gp":  "3gp",
		},
		AudioContainers: map[string]string{
			"mp3":  "mp3",
			"ac3":  "ac3",
			"wav":  "wav",
			"aiff": "aiff",
			"ogg":  "ogg",
		},
	}
}

// LoadCodecTable reads a JSON table file and merges it over the
// defaults, so deployments only list the entries they add or change.
func LoadCodecTable(path string) (CodecTable, error) {
	table := DefaultCodecTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read codec table: %w", err)
	}

	var overlay CodecTable
	if err := json.Unmarshal(data, &overlay); err != nil {
		return table, fmt.Errorf("failed to parse codec table: %w", err)
	}

	merge(table.VideoCodecs, overlay.VideoCodecs)
	merge(table.AudioCodecs, overlay.AudioCodecs)
	merge(table.VideoContainers, overlay.VideoContainers)
	merge(table.AudioContainers, overlay.AudioContainers)

	return table, nil
}

func merge(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

// KnownCodec reports whether the format's codec names resolve in the
// table. Used to validate formats at creation time rather than at
// encode time.
func (t CodecTable) KnownCodec(f *Format) error {
	if f.AudioCodec != "" {
		if _, ok := t.AudioCodecs[f.AudioCodec]; !ok {
			return fmt.Errorf("unknown audio codec %q", f.AudioCodec)
		}
	}
	if f.Kind == KindVideo {
		if f.VideoCodec == "" {
			return fmt.Errorf("video format %q requires a video codec", f.Name)
		}
		if _, ok := t.VideoCodecs[f.VideoCodec]; !ok {
			return fmt.Errorf("unknown video codec %q", f.VideoCodec)
		}
		if _, ok := t.VideoContainers[f.Container]; !ok {
			return fmt.Errorf("unknown video container %q", f.Container)
		}
	} else {
		if _, ok := t.AudioContainers[f.Container]; !ok {
			return fmt.Errorf("unknown audio container %q", f.Container)
		}
	}
	return nil
}
