package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/metrics"
)

// EncodeError describes a failed transcode: the tool reported errors,
// or finished without producing an output file.
type EncodeError struct {
	Format string
	Input  string
	Output string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s to %s: %v", e.Input, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// PreviewError describes a failed still-frame extraction.
type PreviewError struct {
	Input string
	Err   error
}

func (e *PreviewError) Error() string {
	return fmt.Sprintf("preview %s: %v", e.Input, e.Err)
}

func (e *PreviewError) Unwrap() error {
	return e.Err
}

// Encoder invokes ffmpeg. It is safe for concurrent use; each call
// runs its own process.
type Encoder struct {
	ffmpegPath  string
	table       media.CodecTable
	previewSize string
}

// New creates an Encoder. previewSize is an ffmpeg scale expression
// such as "-1:250" (auto width, height 250).
func New(ffmpegPath string, table media.CodecTable, previewSize string) *Encoder {
	return &Encoder{
		ffmpegPath:  ffmpegPath,
		table:       table,
		previewSize: previewSize,
	}
}

// Encode transcodes the asset's source file at inputPath into
// outputPath according to the format. The parameter layout depends
// on the asset kind: video formats get video parameters followed by
// their audio sub-specification, audio formats get audio parameters
// only.
func (e *Encoder) Encode(ctx context.Context, kind media.Kind, inputPath, outputPath string, f *media.Format) error {
	start := time.Now()

	args := []string{"-y", "-i", inputPath, "-loglevel", "error"}

	var containers map[string]string
	switch kind {
	case media.KindVideo:
		containers = e.table.VideoContainers
		videoArgs, err := e.videoParams(f)
		if err != nil {
			return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath, Err: err}
		}
		args = append(args, videoArgs...)
		args = append(args, "-threads", "0")
		audioArgs, err := e.audioParams(f)
		if err != nil {
			return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath, Err: err}
		}
		args = append(args, audioArgs...)
	case media.KindAudio:
		containers = e.table.AudioContainers
		audioArgs, err := e.audioParams(f)
		if err != nil {
			return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath, Err: err}
		}
		args = append(args, audioArgs...)
	default:
		return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath,
			Err: fmt.Errorf("unknown media kind %q", kind)}
	}

	muxer, ok := containers[f.Container]
	if !ok {
		return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath,
			Err: fmt.Errorf("unknown %s container %q", kind, f.Container)}
	}
	args = append(args, "-f", muxer, outputPath)

	if err := e.run(ctx, args); err != nil {
		metrics.EncodesTotal.WithLabelValues(string(kind), "error").Inc()
		logging.Error("ffmpeg conversion error: %v (format: %s, input: %s, output: %s, args: %v)",
			err, f.Name, inputPath, outputPath, args)
		return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath, Err: err}
	}

	if _, err := os.Stat(outputPath); err != nil {
		metrics.EncodesTotal.WithLabelValues(string(kind), "error").Inc()
		logging.Error("ffmpeg conversion error: no output file after conversion (format: %s, input: %s, output: %s, args: %v)",
			f.Name, inputPath, outputPath, args)
		return &EncodeError{Format: f.Name, Input: inputPath, Output: outputPath,
			Err: fmt.Errorf("no output file after conversion")}
	}

	metrics.EncodesTotal.WithLabelValues(string(kind), "success").Inc()
	metrics.EncodeDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	return nil
}

// Preview extracts a single frame at the midpoint of the file,
// scaled to the configured preview size, into outputPath.
func (e *Encoder) Preview(ctx context.Context, inputPath, outputPath string, duration float64) error {
	seek := int64(duration / 2)

	args := []string{
		"-loglevel", "error",
		"-i", inputPath,
		"-ss", strconv.FormatInt(seek, 10),
		"-vframes", "1",
		"-vf", "scale=" + e.previewSize,
		"-y", outputPath,
	}

	if err := e.run(ctx, args); err != nil {
		metrics.PreviewsTotal.WithLabelValues("error").Inc()
		logging.Error("ffmpeg preview error: %v (input: %s, output: %s)", err, inputPath, outputPath)
		return &PreviewError{Input: inputPath, Err: err}
	}

	if _, err := os.Stat(outputPath); err != nil {
		metrics.PreviewsTotal.WithLabelValues("error").Inc()
		logging.Error("ffmpeg preview error: no output file after extraction (input: %s, output: %s)", inputPath, outputPath)
		return &PreviewError{Input: inputPath, Err: fmt.Errorf("no output file after preview extraction")}
	}

	metrics.PreviewsTotal.WithLabelValues("success").Inc()
	return nil
}

// run executes ffmpeg and treats any error-stream output as failure,
// regardless of exit code. ffmpeg exits 0 on some failures when only
// individual streams break; silence on stderr is the success signal
// at -loglevel error.
func (e *Encoder) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("ffmpeg command: %v", cmd.Args)

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		return fmt.Errorf("ffmpeg reported: %s", strings.TrimSpace(stderr.String()))
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w", runErr)
	}
	return nil
}

// audioParams builds the audio parameter block shared by both kinds.
func (e *Encoder) audioParams(f *media.Format) ([]string, error) {
	var params []string

	if f.AudioCodec != "" {
		lib, ok := e.table.AudioCodecs[f.AudioCodec]
		if !ok {
			return nil, fmt.Errorf("unknown audio codec %q", f.AudioCodec)
		}
		params = append(params, "-acodec", lib)
	}
	if f.AudioBitrate > 0 {
		params = append(params, "-b:a", strconv.FormatInt(f.AudioBitrate, 10))
	}
	if f.AudioCodecParams != "" {
		params = append(params, strings.Fields(f.AudioCodecParams)...)
	}
	if f.AudioChannels > 0 {
		params = append(params, "-ac", strconv.Itoa(f.AudioChannels))
	}

	return params, nil
}

// videoParams builds the video parameter block. The buffer size is
// pinned to twice the bitrate so the rate controller has one GOP of
// slack around the ceiling.
func (e *Encoder) videoParams(f *media.Format) ([]string, error) {
	lib, ok := e.table.VideoCodecs[f.VideoCodec]
	if !ok {
		return nil, fmt.Errorf("unknown video codec %q", f.VideoCodec)
	}
	params := []string{"-vcodec", lib}

	if f.VideoCodecParams != "" {
		params = append(params, strings.Fields(f.VideoCodecParams)...)
	}

	if f.VideoBitrate > 0 {
		bitrate := strconv.FormatInt(f.VideoBitrate, 10)
		params = append(params,
			"-b:v", bitrate,
			"-maxrate", bitrate,
			"-bufsize", strconv.FormatInt(f.VideoBitrate*2, 10),
		)
	}

	if f.VideoWidth != 0 || f.VideoHeight != 0 {
		params = append(params, "-vf", scaleFilter(f))
	}

	return params, nil
}

// scaleFilter renders the -vf expression for the format's aspect
// mode. A dimension of 0 becomes -2: preserve aspect ratio, computed
// from the other dimension, rounded to an even value as most codecs
// require.
func scaleFilter(f *media.Format) string {
	width := "-2"
	if f.VideoWidth != 0 {
		width = strconv.Itoa(f.VideoWidth)
	}
	height := "-2"
	if f.VideoHeight != 0 {
		height = strconv.Itoa(f.VideoHeight)
	}

	if f.AspectMode == media.AspectScaleCrop {
		// Scale to cover the target box preserving sample aspect
		// ratio, then center-crop to the exact dimensions. The commas
		// inside max() are escaped so ffmpeg does not read them as
		// filter-chain separators.
		return fmt.Sprintf(
			`scale=(iw * sar) * max(%[1]s / (iw * sar)\, %[2]s/ ih):ih * max(%[1]s / (iw * sar)\, %[2]s / ih), crop=%[1]s:%[2]s`,
			width, height)
	}

	return fmt.Sprintf("scale=%s:%s", width, height)
}
