package converter

import (
	"context"
	"errors"
	"fmt"

	"media-converter/internal/database"
	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/probe"
	"media-converter/internal/queue"
	"media-converter/internal/storage"
)

// ErrDoesNotQualify is returned by Convert when the source asset is
// below the format's bitrate floor. No stream record is created.
var ErrDoesNotQualify = errors.New("asset does not qualify for format")

// ErrKindMismatch is returned when an audio asset is paired with a
// video format or vice versa.
var ErrKindMismatch = errors.New("asset and format kinds do not match")

// Prober extracts technical metadata from media files.
type Prober interface {
	Probe(ctx context.Context, path string, restrict media.Kind) (*probe.Result, error)
}

// Encoder runs conversions and preview extraction.
type Encoder interface {
	Encode(ctx context.Context, kind media.Kind, inputPath, outputPath string, f *media.Format) error
	Preview(ctx context.Context, inputPath, outputPath string, duration float64) error
}

// JobQueue dispatches conversion jobs asynchronously.
type JobQueue interface {
	Submit(job queue.Job) (queue.Handle, error)
	Revoke(h queue.Handle)
}

// Converter orchestrates the conversion pipeline: ingesting assets,
// gating formats, dispatching encode jobs and reconciling stream
// records after source changes.
type Converter struct {
	db      *database.Database
	prober  Prober
	encoder Encoder
	jobs    JobQueue
	media   *storage.Store
	streams *storage.Store
	tempDir string
}

// New wires a Converter. mediaStore holds ingested sources and
// previews, streamStore holds finished conversion outputs, tempDir
// receives in-flight encode output before adoption.
func New(db *database.Database, prober Prober, encoder Encoder, jobs JobQueue,
	mediaStore, streamStore *storage.Store, tempDir string) *Converter {
	return &Converter{
		db:      db,
		prober:  prober,
		encoder: encoder,
		jobs:    jobs,
		media:   mediaStore,
		streams: streamStore,
		tempDir: tempDir,
	}
}

// Convert requests a conversion of the asset to the format. The
// quality gate runs first: a source below the format's bitrate floor
// returns ErrDoesNotQualify and leaves no record behind. Otherwise the
// (asset, format) stream record is created or reused and a fresh
// encode job dispatched, revoking any job already running for the
// pair.
func (c *Converter) Convert(ctx context.Context, assetID, formatID int64) (*media.StreamRecord, error) {
	asset, err := c.db.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	format, err := c.db.GetFormat(ctx, formatID)
	if err != nil {
		return nil, err
	}

	if asset.Kind != format.Kind {
		return nil, fmt.Errorf("%w: asset %s is %s, format %s is %s",
			ErrKindMismatch, asset.Title, asset.Kind, format.Name, format.Kind)
	}
	if !asset.QualifiesFor(format) {
		return nil, fmt.Errorf("%w: %s to %s", ErrDoesNotQualify, asset.Title, format.Name)
	}

	rec, created, err := c.db.GetOrCreateStream(ctx, assetID, formatID)
	if err != nil {
		return nil, err
	}
	if created {
		logging.Info("Created stream record %d (%s -> %s)", rec.ID, asset.Title, format.Name)
	}

	if err := c.dispatch(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ConvertToSet converts the asset to every qualifying format in the
// set. Formats the asset does not qualify for are skipped silently;
// the returned records cover only the dispatched conversions.
func (c *Converter) ConvertToSet(ctx context.Context, assetID, setID int64) ([]*media.StreamRecord, error) {
	set, err := c.db.GetFormatSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	var recs []*media.StreamRecord
	for i := range set.Formats {
		rec, err := c.Convert(ctx, assetID, set.Formats[i].ID)
		if errors.Is(err, ErrDoesNotQualify) || errors.Is(err, ErrKindMismatch) {
			logging.Debug("Skipping format %s for asset %d: %v", set.Formats[i].Name, assetID, err)
			continue
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ConvertAllToSet dispatches conversion of every stored asset of the
// set's kind to the set's formats. Assets that fail the gate for a
// format simply skip it, so the returned records cover only the
// pairings that were actually dispatched.
func (c *Converter) ConvertAllToSet(ctx context.Context, setID int64) ([]*media.StreamRecord, error) {
	set, err := c.db.GetFormatSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	assets, err := c.db.ListAssets(ctx, set.Kind)
	if err != nil {
		return nil, err
	}

	var recs []*media.StreamRecord
	for _, asset := range assets {
		got, err := c.ConvertToSet(ctx, asset.ID, set.ID)
		if err != nil {
			return recs, err
		}
		recs = append(recs, got...)
	}
	return recs, nil
}

// Reconcile re-evaluates every stream record of an asset against the
// quality gate, typically after the source file changed. Records whose
// format the asset no longer qualifies for are cancelled and deleted
// along with their output files; the rest are re-dispatched.
func (c *Converter) Reconcile(ctx context.Context, assetID int64) error {
	asset, err := c.db.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	recs, err := c.db.StreamsForAsset(ctx, assetID)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		format, err := c.db.GetFormat(ctx, rec.FormatID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return err
		}

		if !asset.QualifiesFor(format) {
			logging.Info("Asset %s no longer qualifies for %s, removing stream %d",
				asset.Title, format.Name, rec.ID)
			if err := c.RemoveStream(ctx, rec.ID); err != nil {
				return err
			}
			continue
		}

		if err := c.dispatch(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Cancel stops any conversion running for the stream record and
// returns it to the preparation state. Cancelling a record with no
// running job, or one that no longer exists, is a no-op.
func (c *Converter) Cancel(ctx context.Context, streamID int64) error {
	rec, err := c.db.GetStream(ctx, streamID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	c.jobs.Revoke(queue.Handle(rec.JobHandle))
	rec.Reset()
	if err := c.db.UpdateStream(ctx, rec); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}

// RemoveStream cancels and deletes a stream record, removing its
// output file if one was produced.
func (c *Converter) RemoveStream(ctx context.Context, streamID int64) error {
	rec, err := c.db.GetStream(ctx, streamID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	c.jobs.Revoke(queue.Handle(rec.JobHandle))
	if err := c.streams.Delete(rec.File); err != nil {
		logging.Warn("failed to delete stream output %s: %v", rec.File, err)
	}
	if err := c.db.DeleteStream(ctx, streamID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}

// dispatch revokes any running job for the record, resets it to the
// preparation state and submits a new encode job. If two dispatches
// race for the same record the later job's result wins; the record is
// never left without a terminal state.
func (c *Converter) dispatch(ctx context.Context, rec *media.StreamRecord) error {
	c.jobs.Revoke(queue.Handle(rec.JobHandle))

	rec.Reset()
	if err := c.db.UpdateStream(ctx, rec); err != nil {
		return err
	}

	recID := rec.ID
	handle, err := c.jobs.Submit(func(jobCtx context.Context, h queue.Handle) error {
		return c.runJob(jobCtx, h, recID)
	})
	if err != nil {
		return fmt.Errorf("failed to queue conversion for stream %d: %w", recID, err)
	}

	// The job stores its own handle when it starts; this write only
	// covers the window while it is still pending.
	if err := c.db.SetStreamJobHandle(ctx, recID, string(handle)); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	rec.JobHandle = string(handle)

	logging.Debug("Dispatched conversion job %s for stream %d", handle, recID)
	return nil
}
