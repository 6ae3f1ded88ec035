// Package database manages SQLite persistence for assets, formats,
// format sets and stream records.
//
// The streams table enforces the one-record-per-(asset, format)
// invariant with a unique constraint; everything above this layer can
// rely on GetOrCreateStream never producing duplicates. Updates to a
// record that was deleted concurrently return ErrNotFound, which the
// conversion pipeline treats as a benign cancellation signal rather
// than an error.
package database
