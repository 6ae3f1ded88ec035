package mediatypes

import (
	"path/filepath"
	"strings"

	"media-converter/internal/media"
)

// AudioExtensions maps file extensions to whether they are accepted audio uploads.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".aac":  true,
	".m4a":  true,
	".aiff": true,
	".aif":  true,
	".ac3":  true,
	".wma":  true,
}

// VideoExtensions maps file extensions to whether they are accepted video uploads.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
	".mpg":  true,
	".mpeg": true,
	".m4v":  true,
	".3gp":  true,
	".ogv":  true,
	".ts":   true,
}

// mimeTypes maps extensions to MIME types for serving stored files.
var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
	".ac3":  "audio/ac3",
	".wma":  "audio/x-ms-wma",

	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".m4v":  "video/mp4",
	".3gp":  "video/3gpp",
	".ogv":  "video/ogg",
	".ts":   "video/mp2t",

	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// DetectKind classifies a filename as audio or video by extension.
// The second return value is false for unsupported extensions.
func DetectKind(filename string) (media.Kind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case AudioExtensions[ext]:
		return media.KindAudio, true
	case VideoExtensions[ext]:
		return media.KindVideo, true
	default:
		return "", false
	}
}

// GetMimeType returns the MIME type for a file extension.
// Returns "application/octet-stream" for unknown extensions.
func GetMimeType(ext string) string {
	if mime, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}
