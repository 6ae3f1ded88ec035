// Package probe extracts technical metadata from media files by
// invoking ffprobe and parsing its JSON output.
//
// Only the first audio track and the first video track are examined
// when a file carries several of the same kind; this is a deliberate
// simplification, not a general demuxer.
package probe
