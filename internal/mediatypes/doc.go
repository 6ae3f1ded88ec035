// Package mediatypes provides shared extension and MIME type utilities for
// media file handling across the media-converter application.
//
// This package exists as a small foundation that can be imported by other
// packages without creating import cycles. It contains extension maps and
// pure utility functions with no external dependencies.
//
// # Kind Detection
//
// Use DetectKind to classify an uploaded file by its extension:
//
//	kind, ok := mediatypes.DetectKind(filename)
//	if !ok {
//	    // reject the upload
//	}
//
// # MIME Types
//
// Use GetMimeType to get the appropriate MIME type for HTTP responses:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	mimeType := mediatypes.GetMimeType(ext) // e.g., "audio/mpeg"
//
// # Supported Formats
//
// The extension maps (AudioExtensions, VideoExtensions) can be used directly
// for format validation or iteration:
//
//	if mediatypes.AudioExtensions[ext] {
//	    // File is a supported audio upload
//	}
package mediatypes
