package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/metrics"
)

// Error describes a failed metadata probe. Probes are never retried
// automatically; the caller decides what a failure means.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the metadata extracted from one file. Audio and Video
// are nil when the file has no track of that kind (or track
// extraction was restricted away).
type Result struct {
	media.Metadata
	Audio *media.AudioTrack
	Video *media.VideoTrack
}

// Prober invokes ffprobe.
type Prober struct {
	ffprobePath string
}

// New creates a Prober using the given ffprobe executable.
func New(ffprobePath string) *Prober {
	return &Prober{ffprobePath: ffprobePath}
}

// Probe extracts metadata from the file at path. restrict may be
// KindAudio or KindVideo to skip track extraction for the other
// kind (audio-only assets pass KindAudio so stray cover-art video
// tracks in the container do not misclassify the file); the zero
// value extracts both.
//
// Any output on the error stream is treated as failure regardless of
// exit code.
func (p *Prober) Probe(ctx context.Context, path string, restrict media.Kind) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, p.ffprobePath, path,
		"-loglevel", "error",
		"-show_streams",
		"-show_format",
		"-print_format", "json",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("ffprobe command: %v", cmd.Args)

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		logging.Error("ffprobe error: %s (cmd: %v)", strings.TrimSpace(stderr.String()), cmd.Args)
		return nil, &Error{Path: path, Err: fmt.Errorf("ffprobe reported: %s", strings.TrimSpace(stderr.String()))}
	}
	if runErr != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		return nil, &Error{Path: path, Err: fmt.Errorf("ffprobe failed: %w", runErr)}
	}

	result, err := parseOutput(stdout.Bytes(), restrict)
	if err != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		return nil, &Error{Path: path, Err: err}
	}

	metrics.ProbesTotal.WithLabelValues("success").Inc()
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// ffprobe emits all format-level numbers as strings.
type probeOutput struct {
	Format  *probeFormat  `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	BitRate  string `json:"bit_rate"`
	Size     string `json:"size"`
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	BitRate   string `json:"bit_rate"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

func parseOutput(data []byte, restrict media.Kind) (*Result, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unparseable ffprobe output: %w", err)
	}
	if out.Format == nil {
		return nil, fmt.Errorf("ffprobe output has no format section")
	}

	bitrate, err := strconv.ParseInt(out.Format.BitRate, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid format bit_rate %q", out.Format.BitRate)
	}
	size, err := strconv.ParseInt(out.Format.Size, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid format size %q", out.Format.Size)
	}
	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid format duration %q", out.Format.Duration)
	}

	result := &Result{
		Metadata: media.Metadata{
			Bitrate:  bitrate,
			Size:     size,
			Duration: duration,
		},
	}

	if restrict == "" || restrict == media.KindVideo {
		if s := firstStream(out.Streams, "video"); s != nil {
			result.Video = &media.VideoTrack{
				Codec:   s.CodecName,
				Bitrate: trackBitrate(s),
				Width:   s.Width,
				Height:  s.Height,
			}
		}
	}
	if restrict == "" || restrict == media.KindAudio {
		if s := firstStream(out.Streams, "audio"); s != nil {
			result.Audio = &media.AudioTrack{
				Codec:    s.CodecName,
				Bitrate:  trackBitrate(s),
				Channels: s.Channels,
			}
		}
	}

	return result, nil
}

// firstStream returns the first stream of the given codec type;
// later tracks of the same kind are ignored.
func firstStream(streams []probeStream, codecType string) *probeStream {
	for i := range streams {
		if streams[i].CodecType == codecType {
			return &streams[i]
		}
	}
	return nil
}

// trackBitrate parses the per-track bitrate. ffprobe omits it for
// some containers; 0 means "unknown" and callers fall back to the
// overall file bitrate.
func trackBitrate(s *probeStream) int64 {
	if s.BitRate == "" {
		return 0
	}
	n, err := strconv.ParseInt(s.BitRate, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
