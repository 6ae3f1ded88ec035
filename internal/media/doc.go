// Package media defines the domain model for the stream conversion
// pipeline: ingested assets (audio or video), target encoding formats
// and format sets, per-(asset, format) stream records with their
// conversion state machine, the quality gate that decides whether a
// conversion is worth doing, and the codec/container mapping tables
// consumed by the encoder.
package media
