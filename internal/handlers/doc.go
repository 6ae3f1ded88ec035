// Package handlers provides HTTP request handlers for the media converter API.
//
// It includes handlers for:
//   - Asset upload, listing, source replacement and deletion
//   - Format and format set management
//   - Conversion dispatch, cancellation and reconciliation
//   - Serving source files, previews and finished conversion outputs
//   - Health checks, stats and build information
package handlers
