// Package encoder builds and runs ffmpeg invocations that transcode
// an asset into a target format, and extracts still-frame previews
// from videos.
//
// The encoder never inspects media bytes itself; it maps canonical
// codec and container names to ffmpeg library and muxer names via
// the configured codec table and leaves everything else to the tool.
package encoder
